package ipc

import (
	"encoding/binary"
	"encoding/json"
	"net"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sent, err := NewEnvelope(TypeObserve, ObserveMessage{
		Step:   7,
		Values: map[string]float64{"temp": 42.5},
	})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- WriteEnvelope(client, sent)
	}()

	got, err := ReadEnvelope(server)
	if err != nil {
		t.Fatalf("ReadEnvelope failed: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("WriteEnvelope failed: %v", err)
	}

	if got.Type != TypeObserve {
		t.Errorf("type = %q, want %q", got.Type, TypeObserve)
	}
	var obs ObserveMessage
	if err := json.Unmarshal(got.Data, &obs); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if obs.Step != 7 || obs.Values["temp"] != 42.5 {
		t.Errorf("payload = %+v, want step 7 temp 42.5", obs)
	}
}

func TestReadEnvelopeRejectsBadLength(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		// Oversized frame announcement with no payload behind it.
		binary.Write(client, binary.LittleEndian, uint32(1<<21))
	}()

	if _, err := ReadEnvelope(server); err == nil {
		t.Errorf("oversized frame accepted, want error")
	}
}

func TestReadEnvelopeRejectsZeroLength(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		binary.Write(client, binary.LittleEndian, uint32(0))
	}()

	if _, err := ReadEnvelope(server); err == nil {
		t.Errorf("zero-length frame accepted, want error")
	}
}

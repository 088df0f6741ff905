package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evoframe/rulekit/persist"
)

func TestStoreCopies(t *testing.T) {
	store := NewStore(nil)
	if store.Get() != nil {
		t.Fatalf("empty store returned a set")
	}

	set := thermostatSet(t)
	store.Set(set)
	got := store.Get()
	if got == set {
		t.Fatalf("Get returned the stored pointer, want a copy")
	}
	got.Rules[0].TimesApplied = 99
	if store.Get().Rules[0].TimesApplied != 0 {
		t.Errorf("mutation of a Get copy leaked into the store")
	}
}

func TestReloaderPicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.rules")

	first := thermostatSet(t)
	if err := persist.Save(first, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	store := NewStore(first)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := NewReloader(path, store).Start(ctx); err != nil {
			t.Errorf("reloader failed: %v", err)
		}
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)

	second := thermostatSet(t)
	second.UID = "reloaded-set"
	if err := persist.Save(second, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if got := store.Get(); got != nil && got.UID == "reloaded-set" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("store never saw the reloaded set")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("reloader did not stop on cancel")
	}
}

func TestReloaderKeepsOldSetOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.rules")
	set := thermostatSet(t)
	store := NewStore(set)

	r := NewReloader(path, store)
	r.reload() // missing file
	if got := store.Get(); got == nil || got.UID != set.UID {
		t.Errorf("store lost its set after a failed reload")
	}
}

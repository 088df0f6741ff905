package schema

import "testing"

func TestEncodeScalarAndCategorical(t *testing.T) {
	vars := []Variable{
		{Name: "context", Size: 1},
		{Name: "mode", Size: 2, Values: []string{"A", "B"}},
	}
	encoded, err := Encode(vars)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := map[string]string{
		"0": "context",
		"1": "mode" + CategoryMarker + "A",
		"2": "mode" + CategoryMarker + "B",
	}
	if len(encoded) != len(want) {
		t.Fatalf("Encode returned %d entries, want %d", len(encoded), len(want))
	}
	for k, v := range want {
		if encoded[k] != v {
			t.Errorf("encoded[%q] = %q, want %q", k, encoded[k], v)
		}
	}
}

func TestEncodeContiguousIndices(t *testing.T) {
	vars := []Variable{
		{Name: "admission_source", Size: 3, Values: []string{"ER", "Referral", "Transfer"}},
		{Name: "age", Size: 1},
		{Name: "readmitted", Size: 2, Values: []string{"No", "Yes"}},
	}
	encoded, err := Encode(vars)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(encoded) != 6 {
		t.Fatalf("Encode returned %d entries, want 6", len(encoded))
	}
	// Every key 0..5 present, no gaps.
	for _, k := range []string{"0", "1", "2", "3", "4", "5"} {
		if _, ok := encoded[k]; !ok {
			t.Errorf("missing index key %q", k)
		}
	}
	if encoded["3"] != "age" {
		t.Errorf("encoded[\"3\"] = %q, want \"age\"", encoded["3"])
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		vars []Variable
	}{
		{"missing values", []Variable{{Name: "mode", Size: 2}}},
		{"too few values", []Variable{{Name: "mode", Size: 3, Values: []string{"A", "B"}}}},
		{"zero size", []Variable{{Name: "x", Size: 0}}},
		{"empty name", []Variable{{Name: "", Size: 1}}},
	}
	for _, tc := range tests {
		if _, err := Encode(tc.vars); err == nil {
			t.Errorf("%s: Encode succeeded, want error", tc.name)
		}
	}
}

func TestMarkerHelpers(t *testing.T) {
	name := "race" + CategoryMarker + "Hispanic"
	if !IsCategorical(name) {
		t.Errorf("IsCategorical(%q) = false, want true", name)
	}
	if IsCategorical("temp") {
		t.Errorf("IsCategorical(\"temp\") = true, want false")
	}
	if got := ExtractName(name); got != "race" {
		t.Errorf("ExtractName(%q) = %q, want \"race\"", name, got)
	}
	if got := ExtractName("temp"); got != "temp" {
		t.Errorf("ExtractName(\"temp\") = %q, want \"temp\"", got)
	}
	category, ok := ExtractCategory(name)
	if !ok || category != "Hispanic" {
		t.Errorf("ExtractCategory(%q) = %q, %v, want \"Hispanic\", true", name, category, ok)
	}
	if _, ok := ExtractCategory("temp"); ok {
		t.Errorf("ExtractCategory(\"temp\") reported ok, want false")
	}
}

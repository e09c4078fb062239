package core

import "testing"

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatalf("NewID returned an empty ID")
		}
		if seen[id] {
			t.Fatalf("NewID returned a duplicate: %s", id)
		}
		seen[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID("run-123"); err != nil {
		t.Errorf("valid run ID rejected: %v", err)
	}
	if _, err := ParseRunID("   "); err == nil {
		t.Errorf("blank run ID should be rejected")
	}
}

func TestParseVariableKey(t *testing.T) {
	key, err := ParseVariableKey("sales_volume")
	if err != nil {
		t.Fatalf("valid variable key rejected: %v", err)
	}
	if key.String() != "sales_volume" {
		t.Errorf("key round-trip mismatch: %s", key)
	}
	if _, err := ParseVariableKey(""); err == nil {
		t.Errorf("empty variable key should be rejected")
	}
}

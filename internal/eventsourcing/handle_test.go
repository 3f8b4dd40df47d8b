package eventsourcing

import "testing"

func TestNewHandle_Valid(t *testing.T) {
	h, err := NewHandle("ca-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.String() != "ca-1" {
		t.Fatalf("got %q, want %q", h.String(), "ca-1")
	}
}

func TestNewHandle_Rejects(t *testing.T) {
	cases := []string{"", ".", "..", "a/b", `a\b`, "bad\x00name"}
	for _, c := range cases {
		if _, err := NewHandle(c); err == nil {
			t.Errorf("NewHandle(%q) succeeded, want error", c)
		}
	}
}

package host

import "testing"

func TestFakeClipboardRoundTrip(t *testing.T) {
	f := NewFake()
	if err := f.SetClipboardText("hello"); err != nil {
		t.Fatalf("SetClipboardText error: %v", err)
	}
	got, err := f.ClipboardText()
	if err != nil {
		t.Fatalf("ClipboardText error: %v", err)
	}
	if got != "hello" {
		t.Errorf("ClipboardText() = %q, want %q", got, "hello")
	}
}

func TestFakeFileRoundTrip(t *testing.T) {
	f := NewFake()
	if err := f.WriteFile("cart.tic", []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	data, err := f.ReadFile("cart.tic")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if len(data) != 3 || data[0] != 1 {
		t.Errorf("ReadFile() = %v, want [1 2 3]", data)
	}
}

func TestFakeReadMissingFile(t *testing.T) {
	f := NewFake()
	if _, err := f.ReadFile("missing.tic"); err == nil {
		t.Errorf("expected error reading missing file")
	}
}

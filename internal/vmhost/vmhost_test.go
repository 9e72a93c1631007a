package vmhost

import (
	"errors"
	"testing"

	"tic-editor-core/internal/cart"
)

func TestFakeLoadCartridge(t *testing.T) {
	f := &Fake{}
	c := cart.New()
	if err := f.LoadCartridge(c); err != nil {
		t.Fatalf("LoadCartridge returned error: %v", err)
	}
	if f.Loaded != c {
		t.Errorf("Fake did not record the loaded cartridge")
	}
}

func TestFakeCompileCheckReturnsConfiguredError(t *testing.T) {
	f := &Fake{CompileErr: errors.New("boom")}
	if err := f.CompileCheck("function main() end"); err == nil {
		t.Fatalf("expected configured error")
	}
	if f.LastSource != "function main() end" {
		t.Errorf("did not record source")
	}
}

func TestFakePlaySFXRecordsArgs(t *testing.T) {
	f := &Fake{}
	c := cart.New()
	if err := f.PlaySFX(c, 3, 12, 4); err != nil {
		t.Fatalf("PlaySFX returned error: %v", err)
	}
	if f.PlayedIndex != 3 || f.PlayedNote != 12 || f.PlayedOct != 4 {
		t.Errorf("PlaySFX args not recorded: %+v", f)
	}
}

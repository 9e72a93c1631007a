package studio

import (
	"testing"
	"time"

	"tic-editor-core/internal/host"
	"tic-editor-core/internal/router"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	sys := host.NewFake()
	cfg, err := Load(sys, "config.json")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Scale != 3 || cfg.StartMode != router.ModeCode {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sys := host.NewFake()
	cfg := DefaultConfig()
	cfg.RememberCart("game.tic")
	cfg.StartMode = router.ModeSprite
	cfg.Scale = 5

	if err := Save(sys, "config.json", cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := Load(sys, "config.json")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Scale != 5 || got.StartMode != router.ModeSprite {
		t.Errorf("Load() = %+v, want scale 5 mode sprite", got)
	}
	if len(got.RecentCarts) != 1 || got.RecentCarts[0] != "game.tic" {
		t.Errorf("RecentCarts = %v, want [game.tic]", got.RecentCarts)
	}
}

func TestRememberCartDeduplicatesAndCaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RememberCart("a.tic")
	cfg.RememberCart("b.tic")
	cfg.RememberCart("a.tic")
	if len(cfg.RecentCarts) != 2 {
		t.Fatalf("RecentCarts = %v, want length 2", cfg.RecentCarts)
	}
	if cfg.RecentCarts[0] != "a.tic" {
		t.Errorf("RecentCarts[0] = %q, want a.tic (most recent first)", cfg.RecentCarts[0])
	}
}

func TestLoadNormalizesInvalidScale(t *testing.T) {
	sys := host.NewFake()
	sys.WriteFile("config.json", []byte(`{"scale": -1, "start_mode": 99}`))
	cfg, err := Load(sys, "config.json")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Scale != 3 {
		t.Errorf("Scale = %d, want normalized to 3", cfg.Scale)
	}
	if cfg.StartMode != router.ModeCode {
		t.Errorf("StartMode = %v, want normalized to ModeCode", cfg.StartMode)
	}
}

func TestAutosaveWriteReadClear(t *testing.T) {
	sys := host.NewFake()
	path := AutosavePath("config.json")

	j := AutosaveJournal{SavedAt: time.Unix(1000, 0), SourcePath: "game.tic", Code: "function main() end"}
	if err := WriteAutosave(sys, path, j); err != nil {
		t.Fatalf("WriteAutosave error: %v", err)
	}

	got, ok, err := ReadAutosave(sys, path)
	if err != nil || !ok {
		t.Fatalf("ReadAutosave: ok=%v err=%v", ok, err)
	}
	if got.Code != j.Code {
		t.Errorf("ReadAutosave() code = %q, want %q", got.Code, j.Code)
	}
}

func TestReadAutosaveMissingReturnsNotOK(t *testing.T) {
	sys := host.NewFake()
	_, ok, err := ReadAutosave(sys, "nope.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected ok=false for a missing autosave journal")
	}
}

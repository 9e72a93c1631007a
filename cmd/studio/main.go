// Command studio is the tic-editor-core editor: a cartridge-authoring
// shell covering code, sprites, the map, the world overview, sfx, and
// music.
package main

import (
	"flag"
	"fmt"
	"os"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/clipboard"
	"tic-editor-core/internal/router"
	"tic-editor-core/internal/shell"
	"tic-editor-core/internal/studio"
	"tic-editor-core/internal/vmhost"
)

func main() {
	codeMode := flag.Bool("code", false, "start in the code editor")
	spritesMode := flag.Bool("sprites", false, "start in the sprite editor")
	mapMode := flag.Bool("map", false, "start in the map editor")
	surfMode := flag.Bool("surf", false, "start in the world overview")
	fullscreen := flag.Bool("fullscreen", false, "start in fullscreen")
	scale := flag.Int("scale", 0, "display scale (0 uses the saved/default scale)")
	flag.Parse()

	sys := shell.System{}
	cfgPath := studio.ConfigPath(sys)
	cfg, err := studio.Load(sys, cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "studio: warning: config load failed, using defaults: %v\n", err)
	}

	logger := shell.NewLogger()
	cart.SetLogger(logger)
	clipboard.SetLogger(logger)

	cartPath := flag.Arg(0)
	if cartPath == "" {
		cartPath = cfg.LastCartPath
	}

	c := cart.New()
	if cartPath != "" {
		data, err := os.ReadFile(cartPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "studio: error reading cartridge: %v\n", err)
			os.Exit(1)
		}
		c = cart.Load(data)
		cfg.RememberCart(cartPath)
	}

	if *scale > 0 {
		cfg.Scale = *scale
	}
	if *fullscreen {
		cfg.FullscreenUI = true
	}

	startMode := cfg.StartMode
	switch {
	case *codeMode:
		startMode = router.ModeCode
	case *spritesMode:
		startMode = router.ModeSprite
	case *mapMode:
		startMode = router.ModeMap
	case *surfMode:
		startMode = router.ModeWorld
	}

	s, err := shell.New(c, &vmhost.Fake{}, cfg.Scale, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "studio: error creating shell: %v\n", err)
		os.Exit(1)
	}
	s.SetMode(startMode)

	if err := studio.Save(sys, cfgPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "studio: warning: could not save config: %v\n", err)
	}

	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "studio: %v\n", err)
		os.Exit(1)
	}

	if cartPath != "" {
		if err := os.WriteFile(cartPath, cart.Save(c), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "studio: error saving cartridge: %v\n", err)
			os.Exit(1)
		}
	}
}

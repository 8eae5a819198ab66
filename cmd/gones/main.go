// Package main implements the gones NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gones/internal/app"
	"gones/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		debug      = flag.Bool("debug", false, "Enable debug mode")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		frames     = flag.Int("frames", 120, "Number of frames to run in headless mode")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	setupGracefulShutdown()

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if *nogui {
		config := application.GetConfig()
		config.Video.Backend = "headless"
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	if *debug {
		config := application.GetConfig()
		config.UpdateDebug(true, true, true)
		application.ApplyDebugSettings()
	}

	if *romFile != "" {
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("failed to load ROM %s: %v", *romFile, err)
		}
		if *debug {
			application.ApplyDebugSettings()
		}
	}

	if *nogui {
		if *romFile == "" {
			log.Fatal("ROM file required for headless mode (-rom)")
		}
		runHeadlessMode(application, *frames)
	} else {
		if err := runGUIMode(application); err != nil {
			log.Fatalf("GUI mode failed: %v", err)
		}
	}
}

// runGUIMode starts the windowed Ebitengine application loop.
func runGUIMode(application *app.Application) error {
	config := application.GetConfig()
	windowWidth, windowHeight := config.GetWindowResolution()
	log.Printf("window %dx%d (scale %dx), audio %s (%d Hz), video filter %s",
		windowWidth, windowHeight, config.Window.Scale,
		enabledString(config.Audio.Enabled), config.Audio.SampleRate,
		config.Video.Filter)

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %w", err)
	}

	log.Printf("session complete: %d frames in %v (%.1f fps average)",
		application.GetFrameCount(), application.GetUptime(), application.GetFPS())
	return nil
}

// runHeadlessMode runs the emulator without a window for the given number
// of frames, useful for scripted testing and automation. It dumps a few
// frames to PPM files along the way for manual sanity-checking of the PPU.
func runHeadlessMode(application *app.Application, targetFrames int) {
	bus := application.GetBus()
	if bus == nil {
		log.Fatal("bus not initialized")
	}

	dumpAt := map[int]bool{targetFrames / 4: true, targetFrames / 2: true, targetFrames - 1: true}
	for frame := 0; frame < targetFrames; frame++ {
		if err := bus.Frame(); err != nil {
			log.Fatalf("emulation halted at frame %d: %v", frame, err)
		}
		if dumpAt[frame] {
			filename := fmt.Sprintf("frame_%03d.ppm", frame+1)
			if err := app.DumpFrameBufferPPM(bus.GetFrameBuffer(), filename); err != nil {
				log.Printf("failed to dump %s: %v", filename, err)
			}
		}
	}

	log.Printf("ran %d frames, %d CPU cycles", targetFrames, bus.GetCycleCount())
}

// setupGracefulShutdown sets up signal handling for graceful shutdown.
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		os.Exit(0)
	}()
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage() {
	fmt.Println("gones - Go NES Emulator")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  A cycle-accurate NES (Nintendo Entertainment System) emulator core,")
	fmt.Println("  with an Ebitengine-based GUI frontend and a headless mode for testing.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gones [options]                    # Start GUI mode without ROM")
	fmt.Println("  gones -rom <file> [options]        # Start with ROM loaded")
	fmt.Println("  gones -nogui -rom <file> [options] # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  gones                              # Start GUI with no ROM loaded")
	fmt.Println("  gones -rom game.nes                # Start with ROM loaded")
	fmt.Println("  gones -rom game.nes -debug         # Start with debug info enabled")
	fmt.Println("  gones -config custom.json          # Use custom configuration")
	fmt.Println("  gones -nogui -rom test.nes -frames 300  # Run 300 frames headless")
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("  Player 1:")
	fmt.Println("    Arrow Keys / WASD - D-Pad")
	fmt.Println("    J / Z             - A Button")
	fmt.Println("    K / X             - B Button")
	fmt.Println("    Enter             - Start")
	fmt.Println("    Space             - Select")
	fmt.Println()
	fmt.Println("  Player 2 (number row):")
	fmt.Println("    1-4               - D-Pad")
	fmt.Println("    5 / 6             - A / B")
	fmt.Println("    7 / 8             - Start / Select")
	fmt.Println()
	fmt.Println("  Escape              - Quit")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Config file: ./config/gones.json")
	fmt.Println("  ROMs:        ./roms/")
	fmt.Println()
	fmt.Println("SUPPORTED FORMATS:")
	fmt.Println("  - iNES (.nes)")
	fmt.Println("  - NES 2.0")
	fmt.Println("  - Mappers 0, 1, 2, 3, 4, 7, 11, 66")
	fmt.Println()
	fmt.Println("For more information, visit the project documentation.")
}

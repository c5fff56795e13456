package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	evdev "github.com/holoplot/go-evdev"

	"github.com/axeldev/keyzen/internal/config"
	"github.com/axeldev/keyzen/internal/device"
	"github.com/axeldev/keyzen/internal/engine"
	"github.com/axeldev/keyzen/internal/tui"
	"github.com/axeldev/keyzen/internal/uinput"
	"github.com/axeldev/keyzen/internal/wincontext"
)

func listDevices() {
	paths, err := device.Discover()
	if err != nil {
		log.Fatalf("list devices: %v", err)
	}
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			continue
		}
		name, _ := dev.Name()
		kbd := device.IsKeyboard(dev)
		dev.Close()
		fmt.Printf("%s\t%s\tkeyboard=%v\n", path, name, kbd)
	}
}

func buildWindowProvider(cfg *config.Config, logger *log.Logger) func(string) engine.WindowQuerier {
	var candidates []wincontext.Provider
	if x11, err := wincontext.NewX11Provider(); err == nil {
		candidates = append(candidates, x11)
	}
	if sway, err := wincontext.NewSwayProvider(); err == nil {
		candidates = append(candidates, sway)
	}
	if hypr, err := wincontext.NewHyprlandProvider(); err == nil {
		candidates = append(candidates, hypr)
	}
	if gnome, err := wincontext.NewGnomeDBusProvider(); err == nil {
		candidates = append(candidates, gnome)
	}
	if kde, err := wincontext.NewKDEDBusProvider(); err == nil {
		candidates = append(candidates, kde)
	}

	provider := wincontext.Select(candidates, cfg.Environ.SessionType, cfg.Environ.Compositor)
	if provider == nil && len(candidates) > 0 {
		provider = candidates[0]
		logger.Printf("wincontext: no provider matches session_type=%q compositor=%q, falling back to %v",
			cfg.Environ.SessionType, cfg.Environ.Compositor, provider.SupportedEnvironments())
	}
	if provider == nil {
		logger.Printf("wincontext: no window-context provider available; wm_class-based conditionals will never match")
		return func(string) engine.WindowQuerier { return nil }
	}
	querier := wincontext.AsQuerier(provider)
	return func(string) engine.WindowQuerier { return querier }
}

func applyAmbientConfig(cfg *engine.Config, ambient *config.Config) {
	cfg.DevicesOnly = ambient.Device.Only
	cfg.DevicesAvoid = ambient.Device.Avoid
	cfg.PreDelay = time.Duration(ambient.Throttle.PreMs) * time.Millisecond
	cfg.PostDelay = time.Duration(ambient.Throttle.PostMs) * time.Millisecond
	cfg.MultiPurposeTimeout = time.Duration(ambient.Timeout.MultiPurposeMs) * time.Millisecond
	cfg.SuspendTimeout = time.Duration(ambient.Timeout.SuspendMs) * time.Millisecond
	cfg.IgnoreRepeats = ambient.Repeat.IgnoreRepeats
	cfg.UseRepeatCache = ambient.Repeat.CacheEnabled
	if k, ok := engine.KeyByName(ambient.Diagnostic.DumpKey); ok {
		cfg.DumpKey = k
	}
	if k, ok := engine.KeyByName(ambient.Diagnostic.EjectKey); ok {
		cfg.EjectKey = k
	}
}

func run() int {
	var devicesList []string
	flag.Func("devices", "device name/path to grab exclusively (repeatable; comma-separated lists accepted)", func(s string) error {
		devicesList = append(devicesList, splitCSV(s)...)
		return nil
	})
	watchFlag := flag.Bool("watch", true, "watch /dev/input for hotplug changes")
	configPath := flag.String("config", config.DefaultPath(), "path to the ambient config TOML file")
	debugFlag := flag.Bool("debug", false, "enable debug logging to stderr")
	tuiFlag := flag.Bool("tui", false, "run the diagnostics dashboard instead of plain logging")
	listFlag := flag.Bool("list-devices", false, "list input devices and exit")
	flag.Parse()

	if *listFlag {
		listDevices()
		return 0
	}

	var logger *log.Logger
	if *debugFlag {
		logger = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
	} else {
		logger = log.New(io.Discard, "", 0)
	}

	ambient, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(devicesList) > 0 {
		ambient.Device.Only = devicesList
	}
	if !*watchFlag {
		ambient.Device.Watch = false
	}

	if err := device.CheckPermissions(logger); err != nil {
		logger.Printf("device: permission check failed, continuing anyway: %v", err)
	}

	cfg, err := defaultRules()
	if err != nil {
		log.Fatalf("compile rules: %v", err)
	}
	applyAmbientConfig(cfg, ambient)

	out, err := uinput.Create()
	if err != nil {
		log.Fatalf("create virtual keyboard: %v", err)
	}
	defer out.Close()

	querierFor := buildWindowProvider(ambient, logger)
	eng := engine.New(cfg, out, querierFor, logger)

	device.Wakeup(eng.Output, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := device.NewRegistry(logger)
	registry.Only = cfg.DevicesOnly
	registry.Avoid = cfg.DevicesAvoid

	events := make(chan device.Event, 64)
	errs := make(chan error, 16)

	startListening := func(grabbed []*device.Grabbed) {
		for _, g := range grabbed {
			g := g
			go func() {
				intercept := func(deviceName string, key engine.Key, action engine.Action) bool {
					if key == cfg.EjectKey && action.JustPressed() {
						logger.Printf("device: emergency eject triggered from %s", deviceName)
						_ = eng.EmergencyEject()
						registry.UngrabAll()
						cancel()
						return true
					}
					if key == cfg.DumpKey && action.JustPressed() {
						fmt.Fprintln(os.Stderr, eng.Dump().String())
						return true
					}
					return false
				}
				if err := device.Listen(ctx, g, intercept, events); err != nil {
					errs <- fmt.Errorf("listen %s: %w", g.Path, err)
				}
			}()
		}
	}

	startListening(registry.Autodetect(ctx))

	if ambient.Device.Watch {
		go func() {
			err := device.WatchHotplug(ctx, 500*time.Millisecond, func() {
				startListening(registry.Autodetect(ctx))
			}, logger)
			if err != nil && ctx.Err() == nil {
				logger.Printf("device: hotplug watcher stopped: %v", err)
			}
		}()
	}

	go device.Supervisor(ctx, errs, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var program *tea.Program
	if *tuiFlag {
		model := tui.NewModel(eng, ambient, *debugFlag)
		model.DeviceCount = registry.Count
		program = tea.NewProgram(model, tea.WithAltScreen())
		if *debugFlag {
			logger.SetOutput(tui.NewLogWriter(program))
		}
		go func() {
			for {
				select {
				case ev := <-events:
					if err := eng.HandleEvent(ev.DeviceName, ev.Key, ev.Action); err != nil {
						logger.Printf("engine: %v", err)
					}
					program.Send(tui.RefreshMsg{})
				case <-ctx.Done():
					return
				}
			}
		}()
		if _, err := program.Run(); err != nil {
			logger.Printf("tui: %v", err)
		}
		cancel()
	} else {
		for {
			select {
			case ev := <-events:
				if err := eng.HandleEvent(ev.DeviceName, ev.Key, ev.Action); err != nil {
					logger.Printf("engine: %v", err)
				}
			case <-sigCh:
				logger.Printf("shutting down")
				cancel()
			case <-ctx.Done():
				goto shutdown
			}
		}
	}

shutdown:
	registry.UngrabAll()
	_ = eng.Shutdown()
	return 0
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func main() {
	os.Exit(run())
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"voxd/internal/admincli"
	"voxd/internal/adminsocket"
	"voxd/internal/audio"
	"voxd/internal/commands"
	"voxd/internal/config"
	"voxd/internal/hotkey"
	"voxd/internal/keys"
	"voxd/internal/model"
	"voxd/internal/ollama"
	"voxd/internal/overlay"
	"voxd/internal/session"
	"voxd/internal/validation"
	"voxd/internal/web"
	"voxd/internal/whisper"
)

const chunkDuration = 0.5 // CHUNK_DURATION, seconds, matches session.tickInterval

var (
	configPath string
	socketPath string
	modelDir   string
	useConsole bool
	version    = "dev"
)

func init() {
	flag.StringVar(&configPath, "config", defaultConfigPath(), "path to settings.json")
	flag.StringVar(&socketPath, "socket", defaultSocketPath(), "path to the admin control socket")
	flag.StringVar(&modelDir, "model-dir", defaultModelDir(), "directory that caches downloaded whisper models")
	flag.BoolVar(&useConsole, "console", false, "run an interactive debug console in the foreground")
	flag.Parse()
}

func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "voxd", "settings.json")
}

func defaultModelDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".cache")
	}
	return filepath.Join(dir, "voxd", "models")
}

func defaultAutostartDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "autostart")
}

func defaultSocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("voxd-%d", os.Getuid()))
	}
	return filepath.Join(dir, "voxd", "control.sock")
}

func displayBanner() {
	banner := `
╔═══════════════════════════════════╗
║      voxd (voice dictation)        ║
║      Version %-6s               ║
╚═══════════════════════════════════╝`
	fmt.Printf(banner+"\n", version)
}

func main() {
	displayBanner()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	store, err := config.Open(configPath, defaultAutostartDir())
	if err != nil {
		logger.Fatalf("voxd: failed to open settings: %v", err)
	}
	logger.Printf("voxd: settings loaded from %s", configPath)
	settings := store.Snapshot()

	modelMgr := model.New(modelDir, logger)
	modelPath, err := modelMgr.Resolve(settings.Model)
	if err != nil {
		logger.Fatalf("voxd: failed to resolve model %q: %v", settings.Model, err)
	}
	modelPath, err = validation.ValidateModelPath(modelPath)
	if err != nil {
		logger.Fatalf("voxd: model file failed validation: %v", err)
	}

	trans := whisper.New(whisper.DefaultModelFactory{}, whisper.Config{
		ModelPath: modelPath,
		Language:  settings.Language,
		Device:    settings.Device,
	}, logger)
	defer trans.Close()

	capture := audio.NewCapture(chunkDuration)

	ov := overlay.New(logger)

	synth := keys.New()
	browser := web.New()
	ai := ollama.New("", settings.OllamaModel, settings.EffectiveOllamaSystemPrompt())

	builtinDeps := commands.BuiltinDeps{
		Keys:      synth,
		Clipboard: synth,
		Web:       browser,
		AI:        ai,
		Sleeper:   realSleeper{},
		Logger:    logger,
	}
	engine := commands.New(logger, builtinDeps, settings)

	ctrl := session.New(logger, store, capture, trans, engine, synth, ov)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hk, err := hotkey.New(settings.Hotkey, func() { ctrl.Toggle(ctx) }, logger)
	if err != nil {
		logger.Fatalf("voxd: failed to parse hotkey %q: %v", settings.Hotkey, err)
	}
	if err := hk.Start(); err != nil {
		logger.Fatalf("voxd: failed to register hotkey: %v", err)
	}
	defer hk.Stop()
	if settings.KeyboardDevice != "" {
		logger.Printf("voxd: keyboard_device %q is set but has no effect; the global hotkey grabber does not support device selection", settings.KeyboardDevice)
	}

	wireHotReload(store, engine, builtinDeps, trans, hk, ai, modelMgr, logger)

	admin := adminsocket.New(socketPath, logger, func() { ctrl.Toggle(ctx) }, func() adminsocket.ControllerStats {
		s := ctrl.Snapshot()
		return adminsocket.ControllerStats{
			Recording:    s.Recording,
			State:        s.State,
			WindowName:   s.WindowName,
			StartedAt:    s.StartedAt,
			LastText:     s.LastText,
			LastError:    s.LastError,
			SessionCount: s.SessionCount,
		}
	})
	if err := admin.Start(); err != nil {
		logger.Fatalf("voxd: failed to start admin socket: %v", err)
	}
	defer admin.Stop()

	if useConsole {
		console := admincli.New(ctx, ctrlAdapter{ctrl}, logger)
		go func() {
			if err := console.Run(); err != nil {
				logger.Printf("voxd: debug console exited: %v", err)
			}
		}()
	}

	logger.Printf("voxd: ready, hotkey %s", settings.Hotkey)
	<-ctx.Done()

	logger.Printf("voxd: shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if ctrl.Snapshot().Recording {
			ctrl.Stop("shutdown")
		}
		close(done)
	}()
	select {
	case <-shutdownCtx.Done():
		logger.Printf("voxd: shutdown timeout exceeded, forcing exit")
	case <-done:
		logger.Printf("voxd: graceful shutdown completed")
	}
}

// ctrlAdapter bridges session.Controller's concrete Stats return type
// to admincli.Controller's any-typed Snapshot, without admincli taking
// a dependency on the session package.
type ctrlAdapter struct{ *session.Controller }

func (a ctrlAdapter) Snapshot() any { return a.Controller.Snapshot() }

// realSleeper implements commands.Sleeper with a real wall-clock delay.
type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// wireHotReload subscribes to every settings key whose change must
// take effect on the next session without a daemon restart (spec.md
// §4.1/§4.7).
func wireHotReload(store *config.Store, engine *commands.Engine, deps commands.BuiltinDeps, trans *whisper.Transcriber, hk *hotkey.Listener, ai *ollama.Client, modelMgr *model.Manager, logger *log.Logger) {
	rebuild := func(any, any) {
		engine.Rebuild(deps, store.Snapshot())
	}
	store.OnChange("disabled_commands", rebuild)
	store.OnChange("builtin_overrides", rebuild)
	store.OnChange("custom_commands", rebuild)
	store.OnChange("ollama_enabled", rebuild)

	store.OnChange("hotkey", func(newValue, _ any) {
		spec, ok := newValue.(string)
		if !ok {
			return
		}
		if err := hk.UpdateHotkey(spec); err != nil {
			logger.Printf("voxd: failed to update hotkey: %v", err)
		}
	})

	reloadModel := func(any, any) {
		cfg := store.Snapshot()
		path, err := modelMgr.Resolve(cfg.Model)
		if err != nil {
			logger.Printf("voxd: failed to resolve model %q: %v", cfg.Model, err)
			return
		}
		path, err = validation.ValidateModelPath(path)
		if err != nil {
			logger.Printf("voxd: model %q failed validation: %v", cfg.Model, err)
			return
		}
		trans.UpdateConfig(whisper.Config{ModelPath: path, Language: cfg.Language, Device: cfg.Device})
	}
	store.OnChange("model", reloadModel)
	store.OnChange("language", reloadModel)
	store.OnChange("device", reloadModel)

	store.OnChange("ollama_model", func(newValue, _ any) {
		if m, ok := newValue.(string); ok {
			ai.SetModel(m)
		}
	})

	// ollama_system_prompt only takes effect when ollama_custom_prompt_enabled
	// is set; otherwise Generate keeps using config.DefaultOllamaSystemPrompt
	// (spec.md §6).
	applyPrompt := func(any, any) { ai.SetSystemPrompt(store.Snapshot().EffectiveOllamaSystemPrompt()) }
	store.OnChange("ollama_system_prompt", applyPrompt)
	store.OnChange("ollama_custom_prompt_enabled", applyPrompt)
}

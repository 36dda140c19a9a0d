package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"murmur/audio"
	"murmur/config"
	"murmur/encoder"
	"murmur/enhancer"
	"murmur/history"
	"murmur/hotkey"
	"murmur/log"
	"murmur/output"
	"murmur/pipeline"
	"murmur/shutdown"
	"murmur/transcriber"
	"murmur/vad"
)

var version = "dev"

// ringFrames is the capture ring capacity: ~10s of 20ms frames, so a slow
// drain tick never costs speech.
const ringFrames = 512

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "config file path (default: OS config dir)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	modeFlag := flag.String("mode", "", "Enhancement mode (overrides config active_mode)")
	langFlag := flag.String("lang", "", "Language code hint for transcription (e.g., en, es). Empty = auto-detect")
	micTestFlag := flag.Bool("mictest", false, "Run a microphone level test and exit")
	historyFlag := flag.Bool("history", false, "Print recent dictation history and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		return 0
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot resolve config path: %v\n", err)
			return 1
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *deviceFlag != "" {
		cfg.Device = *deviceFlag
	}
	if *modeFlag != "" {
		cfg.ActiveMode = *modeFlag
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	store := openHistory()
	if *historyFlag {
		return printHistory(store)
	}

	stt, err := transcriber.New(cfg.STTModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	enh, err := enhancer.NewAnthropicFromEnv(cfg.EnhanceModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	enc, err := encoder.New(cfg.UploadEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		return 1
	}
	defer actx.Close()

	selectedDevice, err := resolveDevice(actx, cfg.Device, *setupFlag)
	if err != nil {
		log.Warnf("device selection failed: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: %v (falling back to default device)\n", err)
		selectedDevice = nil
	}
	if selectedDevice != nil && audio.IsBluetooth(selectedDevice.Name) {
		log.Warnf("bluetooth microphone selected: %s", selectedDevice.Name)
		fmt.Println("Warning: Bluetooth mics add latency and can hurt transcription quality.")
	}

	ring, err := audio.NewRing(ringFrames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	gate, webrtcOK := vad.NewGate(cfg.VADThreshold)
	if !webrtcOK {
		log.Warn("webrtcvad unavailable, using energy detector")
	}

	writer := output.NewStreamWriter(
		output.SystemClipboard{},
		output.NewTyper(),
		time.Duration(cfg.RestoreDelayMs)*time.Millisecond,
	)

	orch := pipeline.New(pipeline.Deps{
		Ring:        ring,
		Recorder:    audio.NewCapture(actx, ring),
		Gate:        gate,
		Encoder:     enc,
		Transcriber: stt,
		Enhancer:    enh,
		Output:      writer,
		History:     store,
		Events:      consoleSink{},
	}, pipeline.Options{
		Device:        selectedDevice,
		Mode:          cfg.ActiveMode,
		Language:      cfg.Language,
		SampleRate:    cfg.SampleRate,
		MaxDuration:   time.Duration(cfg.MaxRecordingSeconds) * time.Second,
		FlushInterval: time.Duration(cfg.FlushIntervalMs) * time.Millisecond,
	})
	defer orch.Close()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)

	if *micTestFlag {
		return runMicTest(orch, sigChan)
	}

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Fprintf(os.Stderr, "Error registering hotkey: %v\n", err)
		if hint, derr := hotkey.Diagnose(); derr == nil {
			fmt.Fprintf(os.Stderr, "hotkey diagnostics: %s\n", hint)
		}
		return 1
	}
	defer hk.Unregister()

	go watchTransitions(orch.Machine().Subscribe())

	deviceName := "system default"
	if selectedDevice != nil {
		deviceName = selectedDevice.Name
	}
	fmt.Printf("murmur %s — hold Ctrl+Shift+Space to dictate (mic: %s, mode: %s, stt: %s)\n",
		version, deviceName, cfg.ActiveMode, stt.Name())
	log.Infof("ready: device=%s mode=%s stt=%s enhance=%s", deviceName, cfg.ActiveMode, stt.Name(), cfg.EnhanceModel)

	for {
		select {
		case <-hk.Keydown():
			orch.Press()
		case <-hk.Keyup():
			orch.Release()
		case <-sigChan:
			fmt.Println("\nshutting down")
			return 0
		}
	}
}

// openHistory returns the encrypted store, or nil when no passphrase is set.
// Dictation still works without history.
func openHistory() history.Store {
	passphrase := os.Getenv("MURMUR_HISTORY_KEY")
	if passphrase == "" {
		return nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		log.Warnf("history disabled: %v", err)
		return nil
	}
	path := filepath.Join(base, "murmur", "history.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		log.Warnf("history disabled: %v", err)
		return nil
	}
	store, err := history.NewEncryptedStore(path, history.KeyFromPassphrase(passphrase))
	if err != nil {
		log.Warnf("history disabled: %v", err)
		return nil
	}
	return store
}

func resolveDevice(actx audio.Context, name string, setup bool) (*audio.DeviceInfo, error) {
	if setup {
		return audio.SelectDevice(actx)
	}
	if name == "" {
		return nil, nil
	}
	devices, err := actx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", name)
}

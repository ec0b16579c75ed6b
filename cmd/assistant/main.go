package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"jarvis/config"
	"jarvis/internal/application"
	"jarvis/internal/infra/browser"
	"jarvis/internal/infra/gateway"
	"jarvis/internal/infra/relay"
	"jarvis/internal/infra/speech"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	player, err := speech.NewPlayer(cfg.Speech.SampleRate)
	if err != nil {
		logger.Error("initializing audio output", "error", err)
		os.Exit(1)
	}
	defer player.Close()

	synth := speech.NewHTTPSynthesizer(cfg.Speech.SynthURL, player, logger)
	output := application.NewSpeechOutput(synth, logger)
	output.SetVoice(cfg.Speech.Voice)
	output.SetMuted(cfg.Speech.Muted)

	relayClient := relay.NewClient(cfg.Relay.URL)
	opener := browser.NewOpener(logger)

	assistant := application.NewAssistant(relayClient, output, opener, application.NewRealClock(), logger)

	recognizer := speech.NewPushRecognizer()
	input := application.NewSpeechInput(recognizer, speech.BrowserPermission{}, func(text string) {
		assistant.HandleSend(ctx, text)
	}, logger)

	server := gateway.NewServer(cfg.Gateway.Addr, assistant, input, output, recognizer, logger)
	if err := server.Start(ctx); err != nil {
		logger.Error("starting gateway", "error", err)
		os.Exit(1)
	}

	logger.Info("assistant ready",
		"gateway_addr", cfg.Gateway.Addr,
		"relay_url", cfg.Relay.URL,
	)

	<-ctx.Done()

	input.Stop()
	if err := server.Stop(); err != nil {
		logger.Error("stopping gateway", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

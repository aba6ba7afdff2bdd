package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"

	"toolbridge/internal/api"
	"toolbridge/internal/chat"
	"toolbridge/internal/config"
	"toolbridge/internal/tools"
)

const version = "1.0.0"

var (
	debugMode  = flag.Bool("d", false, "Enable debug mode")
	logFile    = flag.String("log-file", "", "Log file path (defaults to stderr)")
	configPath = flag.String("config", "config.json", "Configuration file path")
	listenAddr = flag.String("addr", "", "Listen address (overrides config host/port)")
)

func main() {
	flag.Parse()

	logger := initLogger(*debugMode, *logFile)
	logger.Info().Msg("Toolbridge API server starting")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	registry := tools.NewRegistry(logger)

	// The forwarder is optional: without an API key the tool endpoints
	// still work and the /llm endpoints answer 503.
	var forwarder *chat.Forwarder
	if fw, err := chat.NewForwarder(cfg); err != nil {
		logger.Warn().Err(err).Msg("LLM forwarding disabled")
	} else {
		forwarder = fw
		logger.Info().Str("model", cfg.Model).Msg("LLM forwarding enabled")
	}

	addr := *listenAddr
	if addr == "" {
		addr = cfg.Addr()
	}

	server := api.NewServer(registry, forwarder, version, logger)
	if err := server.ListenAndServe(addr); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server stopped")
	}
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer = os.Stderr
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"

	"toolbridge/internal/rpc"
	"toolbridge/internal/tools"
)

const version = "1.0.0"

var (
	debugMode = flag.Bool("d", false, "Enable debug mode")
	logFile   = flag.String("log-file", "", "Log file path (logs disabled by default)")
)

func main() {
	flag.Parse()

	// Stdout carries the protocol, so logs go to the file or nowhere.
	logger := initLogger(*debugMode, *logFile)
	logger.Info().Msg("Toolbridge stdio server starting")

	registry := tools.NewRegistry(logger)
	server := rpc.NewServer(registry, rpc.ServerInfo{Name: "toolbridge", Version: version}, logger)

	if err := server.Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("Toolbridge stdio server exiting")
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	// Set log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Configure output
	var output io.Writer
	if logFilePath != "" {
		// Log to file only
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	} else {
		// Never log to the console: stdout is the RPC channel
		output = io.Discard
	}

	// Create logger with timestamp
	return zerolog.New(output).With().Timestamp().Logger()
}

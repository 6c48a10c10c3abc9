//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/Halleck45/OpenPronounce/internal/config"
	"github.com/Halleck45/OpenPronounce/internal/observe"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
	"github.com/Halleck45/OpenPronounce/pkg/utils"
)

var (
	configPath     string
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	flag.IntVar(&port, "port", 0, "HTTP server port (default 8080)")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", "", "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 0, "Audio sample rate (default 16000)")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = port
		case "db":
			cfg.Storage.DBPath = dbPath
		case "temp":
			cfg.Audio.TempDir = tempDir
		case "rate":
			cfg.Audio.SampleRate = sampleRate
		case "origins":
			cfg.Server.AllowedOrigins = parseOrigins(allowedOrigins)
		}
	})
}

func parseOrigins(s string) []string {
	if s == "*" {
		return []string{"*"}
	}
	origins := strings.Split(s, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: "1.0.0"})
	if err != nil {
		log.Fatalf("Failed to initialise metrics: %v", err)
	}
	defer shutdown(context.Background())

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	opts, err := cfg.ServiceOptions()
	if err != nil {
		log.Fatalf("Failed to configure service: %v", err)
	}
	opts = append(opts, pronounce.WithMetrics(metrics))

	service, err := pronounce.NewService(opts...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	serverTemp := cfg.Audio.TempDir
	if serverTemp == "" {
		serverTemp = os.TempDir()
	}
	if err := utils.MakeDir(serverTemp); err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}

	server := NewServer(service, &ServerConfig{
		Port:           cfg.Server.Port,
		DBPath:         cfg.Storage.DBPath,
		History:        cfg.Storage.History,
		TempDir:        serverTemp,
		SampleRate:     cfg.Audio.SampleRate,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Composer: scoring.Composer{
			Weights: cfg.Scoring.Weights,
			MaxDTW:  cfg.Scoring.MaxDTW,
			MaxLev:  cfg.Scoring.MaxLev,
		},
	}, metrics)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

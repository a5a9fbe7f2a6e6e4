package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/hyperiond/internal/app"
	"github.com/dokzlo13/hyperiond/internal/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to configuration file (shorthand)")
	resetPairings := flag.Bool("reset-pairings", false, "Remove stored HomeKit pairings on startup")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.Log.GetLevel(), cfg.Log.JSON, cfg.Log.Colors)

	log.Info().
		Str("config", configPath).
		Str("platform", cfg.Platform).
		Strs("effects", cfg.Effects).
		Msg("Starting Hyperion HomeKit bridge")

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up the bridge")
	}

	if *resetPairings {
		removed, err := application.ResetPairings()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to forget paired controllers")
		} else {
			log.Info().Int64("removed", removed).Msg("Forgot paired controllers, accessory is ready to pair again")
		}
	}

	if err := application.Start(app.SignalContext()); err != nil {
		log.Fatal().Err(err).Msg("Failed to publish the accessory")
	}

	application.Wait()

	if err := application.Stop(); err != nil {
		log.Error().Err(err).Msg("Bridge did not stop cleanly")
	}
}

// setupLogging configures the global logger. The HAP library keeps its own
// logger and is left at its defaults.
func setupLogging(level string, useJSON bool, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "hyperiond").Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

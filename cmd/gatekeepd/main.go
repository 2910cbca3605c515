package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mpratt/gatekeep"
)

func main() {
	configFile := flag.String("config", "", "path to a JSON config file (environment variables by default)")
	flag.Parse()

	var (
		config *gatekeep.Config
		err    error
	)
	if *configFile != "" {
		config, err = gatekeep.LoadConfig(*configFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not load config.")
		}
	} else {
		config = gatekeep.ConfigFromEnv()
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var api gatekeep.GridAPI
	if config.Configured() {
		api = gatekeep.NewSheetsAPI(config.APIToken)
		log.Info().Str("SheetID", config.SheetID).Str("Range", config.Range).Msg("Grid integration enabled.")
	} else {
		log.Warn().Msg("No API token configured, running in demo mode with sample data.")
	}

	cache := gatekeep.NewAttendanceCache()
	tracker := gatekeep.NewTracker(api, cache, config)
	tracker.Webhook = gatekeep.NewWebhookNotifier(config.WebhookURL)
	tracker.Live = gatekeep.NewBroadcaster()

	// Warm the cache from the sheet so fallback reads are sensible
	// from the start. Best-effort: a failure here is not fatal.
	if api != nil && config.SheetID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if synced, err := tracker.SyncFromSheet(ctx, "", ""); err != nil {
			log.Warn().Err(err).Msg("Initial sync from sheet failed.")
		} else {
			log.Info().Int("CheckIns", synced).Msg("Initial sync from sheet complete.")
		}
		cancel()
	}

	server := gatekeep.NewServer(tracker, config)
	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped.")
	}
}

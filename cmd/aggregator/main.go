// The aggregator runs one privacy-preserving aggregation pass over the raw
// work records and exits. It is meant to be invoked nightly by a scheduler.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"worklens/internal/aggregation/metrics"
	"worklens/internal/aggregation/period"
	"worklens/internal/aggregation/service"
	recordstore "worklens/internal/aggregation/store/records"
	statstore "worklens/internal/aggregation/store/stats"
	"worklens/internal/events"
	"worklens/internal/platform/config"
	"worklens/internal/platform/logger"
	"worklens/internal/platform/postgres"
)

const dateLayout = "2006-01-02"

func main() {
	dateArg := flag.String("date", "", "aggregate the ISO week containing this date (YYYY-MM-DD, default: yesterday)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	ref := period.DefaultReference(time.Now().UTC())
	if *dateArg != "" {
		parsed, err := time.Parse(dateLayout, *dateArg)
		if err != nil {
			log.Error("invalid -date value", "value", *dateArg, "error", err)
			os.Exit(1)
		}
		ref = parsed
	}

	ctx := context.Background()

	var (
		records service.RecordReader
		stats   service.StatStore
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		records = recordstore.NewPostgres(db)
		stats = statstore.NewPostgres(db)
	} else {
		log.Warn("WORKLENS_DB_URL not set, using in-memory stores (results are discarded on exit)")
		records = recordstore.NewMemory()
		stats = statstore.NewMemory()
	}

	var notifier service.Notifier
	if cfg.KafkaBrokers != "" {
		publisher, err := events.NewRunPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka publisher setup failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		notifier = publisher
	}

	svc, err := service.New(records, stats, notifier, cfg.Privacy, log, metrics.New())
	if err != nil {
		log.Error("aggregation service setup failed", "error", err)
		os.Exit(1)
	}

	summary, err := svc.Run(ctx, ref)
	if err != nil {
		log.Error("aggregation run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("aggregated %d-W%02d: created=%d updated=%d suppressed=%d failed=%d\n",
		summary.ISOYear, summary.ISOWeek,
		summary.Created, summary.Updated, summary.Suppressed, summary.Failed,
	)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/RavenB/UnitedTweetAnalyzer/internal/config"
	"github.com/RavenB/UnitedTweetAnalyzer/internal/scheduler"
	"github.com/RavenB/UnitedTweetAnalyzer/internal/store"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/dataset"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/geo"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/ingest"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openStore opens (or first creates) the configured store. Any error
// here is fatal: the process must not run against a half-initialized
// store, so the caller propagates it up and exits non-zero.
func openStore(cfg *config.Config, log *slog.Logger) (*store.Storage, error) {
	return store.Open(cfg.Database.Path, store.Options{
		SampleSize: cfg.Database.SampleSize,
		Logger:     log,
	})
}

func buildSources(cfg *config.Config, log *slog.Logger) ([]source.Source, error) {
	box, err := cfg.Stream.Box()
	if err != nil {
		return nil, err
	}

	var sources []source.Source
	if cfg.Sources.GeoRSS.Enabled {
		feeds := make([]source.GeoFeed, 0, len(cfg.Sources.GeoRSS.Feeds))
		for _, f := range cfg.Sources.GeoRSS.Feeds {
			feeds = append(feeds, source.GeoFeed{Name: f.Name, URL: f.URL})
		}
		sources = append(sources, source.NewGeoRSS(feeds, box, log))
	}
	if cfg.Sources.File.Enabled {
		sources = append(sources, source.NewFile(cfg.Sources.File.Path))
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}
	return sources, nil
}

func runDaemon() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging.Level)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	sources, err := buildSources(cfg, log)
	if err != nil {
		return err
	}

	interval, err := cfg.Stream.ParsePollInterval()
	if err != nil {
		return err
	}

	ing := ingest.New(st, geo.NewRectResolver(), log)
	sched := scheduler.New(ing, sources, interval, cfg.Stream.Workers, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runIngestFile(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging.Level)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	events, err := source.NewFile(path).Poll(ctx)
	if err != nil {
		return err
	}

	ing := ingest.New(st, geo.NewRectResolver(), log)
	failed := 0
	for _, ev := range events {
		if err := ing.Ingest(ctx, ev); err != nil {
			failed++
		}
	}

	log.Info("ingest finished", "events", len(events), "failed", failed)
	return nil
}

func runTraining(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging.Level)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.TrainingRows(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return dataset.WriteTrainingCSV(os.Stdout, rows)
}

func runClassify(format string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging.Level)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.ClassificationRows(context.Background())
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "arff":
		return dataset.WriteClassificationARFF(os.Stdout, "classification_view", rows)
	case "csv":
		return dataset.WriteClassificationCSV(os.Stdout, rows)
	default:
		return fmt.Errorf("unknown format %q (want csv, json or arff)", format)
	}
}

func runResample() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging.Level)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.Resample(context.Background())
}

func runStats() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging.Level)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	authors, posts, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	byCountry, err := st.CountPostsByCountry(ctx)
	if err != nil {
		return err
	}

	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Slice(countries, func(i, j int) bool {
		if byCountry[countries[i]] != byCountry[countries[j]] {
			return byCountry[countries[i]] > byCountry[countries[j]]
		}
		return countries[i] < countries[j]
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "authors\t%d\n", authors)
	fmt.Fprintf(w, "posts\t%d\n", posts)
	fmt.Fprintln(w, "\nCOUNTRY\tPOSTS")
	for _, c := range countries {
		fmt.Fprintf(w, "%s\t%d\n", c, byCountry[c])
	}
	return w.Flush()
}

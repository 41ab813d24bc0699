package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"miq-flights/internal/config"
	"miq-flights/internal/firestore"
	"miq-flights/internal/flightcheck"
	"miq-flights/internal/logging"
	"miq-flights/internal/portal"
	"miq-flights/internal/store"
	"miq-flights/internal/table"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(2)
	}

	log, logFile, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorf("Run failed: %v", err)
		logFile.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	base, err := flightcheck.OutputBaseName(time.Now())
	if err != nil {
		return err
	}
	csvPath := filepath.Join(cfg.OutputDir, base+".csv")
	xlsxPath := filepath.Join(cfg.OutputDir, base+".xlsx")

	archive, closeArchive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeArchive()

	var publisher flightcheck.Publisher
	if cfg.FirestoreProject != "" {
		fs, err := firestore.New(ctx, cfg.FirestoreProject, cfg.FirestoreCollection)
		if err != nil {
			return fmt.Errorf("initializing firestore: %w", err)
		}
		defer fs.Close()
		publisher = fs
		log.Infof("Firestore: project %s, collection %s", cfg.FirestoreProject, cfg.FirestoreCollection)
	}

	client := portal.NewClient(cfg.PortalURL, cfg.RequestTimeout, cfg.MaxRetries, log)
	var acquirer flightcheck.Acquirer = client
	if cfg.Browser {
		acquirer = portal.NewBrowserAcquirer(cfg.PortalURL, cfg.ChromePath, cfg.RequestTimeout)
		log.Info("Acquiring the session with a headless browser")
	}

	w, err := table.Create(csvPath)
	if err != nil {
		return err
	}

	runner := &flightcheck.Runner{
		Acquirer:  acquirer,
		Fetcher:   client,
		Writer:    w,
		Archive:   archive,
		Publisher: publisher,
		Delay:     portal.RandomDelay(cfg.MinDelay, cfg.MaxDelay),
		Log:       log,
		RunID:     base,
		MaxDates:  cfg.MaxDates,
	}

	sum, runErr := runner.Run(ctx)
	if err := w.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if archive != nil {
		saveManifest(archive, base, sum, log)
	}
	if runErr != nil {
		log.Warnf("Partial table left at %s (%d rows)", csvPath, w.Count())
		return runErr
	}

	log.Info("Step 3: Start")
	if err := table.ConvertToXLSX(csvPath, xlsxPath); err != nil {
		return err
	}
	log.Info("Step 3: End")

	if archive != nil {
		outputs := []string{csvPath, xlsxPath}
		if cfg.LogFile != "" {
			outputs = append(outputs, cfg.LogFile)
		}
		uploadOutputs(archive, base, outputs, log)
	}

	log.WithFields(logrus.Fields{
		"dates":   sum.Dates,
		"records": sum.Records,
		"skipped": sum.SkippedRows,
	}).Infof("All done - See the output in %s", xlsxPath)
	return nil
}

// openArchive returns the configured archive store, or nil if none is set.
func openArchive(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch {
	case cfg.ArchiveBucket != "":
		gcs, err := store.NewGCS(ctx, cfg.ArchiveBucket, "")
		if err != nil {
			return nil, nil, fmt.Errorf("initializing GCS archive: %w", err)
		}
		return gcs, func() { gcs.Close() }, nil
	case cfg.ArchiveDir != "":
		local, err := store.NewLocal(cfg.ArchiveDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing local archive: %w", err)
		}
		return local, func() {}, nil
	}
	return nil, func() {}, nil
}

func saveManifest(archive store.Store, runID string, sum *flightcheck.Summary, log logrus.FieldLogger) {
	if sum == nil {
		return
	}
	if err := archive.SetJSON(flightcheck.ManifestKey(runID), sum); err != nil {
		log.Warnf("Could not archive run summary: %v", err)
	}
}

func uploadOutputs(archive store.Store, runID string, paths []string, log logrus.FieldLogger) {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			log.Warnf("Could not read %s for archiving: %v", p, err)
			continue
		}
		if err := archive.SetWithExtension(flightcheck.OutputKey(runID), filepath.Ext(p), data); err != nil {
			log.Warnf("Could not archive %s: %v", p, err)
		}
	}
}

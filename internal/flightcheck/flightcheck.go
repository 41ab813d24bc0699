// Package flightcheck runs the flight-checker workflow: acquire a session,
// walk its date range, fetch and extract each date, and write the rows.
package flightcheck

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/googleapis/gax-go/v2"
	"github.com/sirupsen/logrus"

	"miq-flights/internal/extract"
	"miq-flights/internal/model"
	"miq-flights/internal/portal"
	"miq-flights/internal/store"
)

// Acquirer obtains the session used for every date query.
type Acquirer interface {
	Acquire(ctx context.Context) (*portal.Session, error)
}

// Fetcher returns the raw flight-checker page for one date.
type Fetcher interface {
	FetchDate(ctx context.Context, s *portal.Session, date time.Time) (string, error)
}

// RecordWriter receives records in table order.
type RecordWriter interface {
	Write(rec model.FlightRecord) error
}

// Publisher mirrors each date's records to an external store.
type Publisher interface {
	ReplaceRecordsForDate(ctx context.Context, date string, records []model.FlightRecord, runID string) error
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	RunID         string    `json:"run_id"`
	MinDate       string    `json:"min_date,omitempty"`
	MaxDate       string    `json:"max_date,omitempty"`
	Dates         int       `json:"dates"`
	Records       int       `json:"records"`
	SkippedRows   int       `json:"skipped_rows"`
	ArchiveErrors int       `json:"archive_errors"`
	PublishErrors int       `json:"publish_errors"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Runner wires the workflow together. Archive and Publisher are optional.
type Runner struct {
	Acquirer  Acquirer
	Fetcher   Fetcher
	Writer    RecordWriter
	Archive   store.Store
	Publisher Publisher

	// Delay is consulted between successive date fetches; nil means no pause.
	Delay portal.DelayPolicy
	// Sleep defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	Log      logrus.FieldLogger
	RunID    string
	MaxDates int
}

// Run executes the workflow. Acquisition failures abort before any date is
// fetched; a failed date fetch aborts the run with the rows written so far
// left in place. The returned summary is non-nil even on error.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := r.logger()
	sum := &Summary{RunID: r.RunID, StartedAt: time.Now()}
	defer func() { sum.FinishedAt = time.Now() }()

	log.Info("Step 1: Start")
	sess, err := r.Acquirer.Acquire(ctx)
	if err != nil {
		return sum, fmt.Errorf("acquiring session: %w", err)
	}
	sum.MinDate = sess.Range.Min.Format(model.DateLayout)
	sum.MaxDate = sess.Range.Max.Format(model.DateLayout)
	log.Debugf("Got the flight checker token [%s]", sess.Token)
	log.WithField("dates", sess.Range.Len()).
		Infof("Got these details: minDate [%s] and maxDate [%s]", sum.MinDate, sum.MaxDate)
	log.Info("Step 1: End")

	log.Info("Step 2: Start")
	for day := range sess.Range.Days() {
		if r.MaxDates > 0 && sum.Dates >= r.MaxDates {
			log.Infof("Stopping after %d dates", sum.Dates)
			break
		}
		if sum.Dates > 0 {
			if err := r.pause(ctx, log, sum.Dates); err != nil {
				return sum, err
			}
		}
		sum.Dates++
		if err := r.processDate(ctx, sess, day, sum); err != nil {
			return sum, err
		}
	}
	log.WithFields(logrus.Fields{
		"dates":   sum.Dates,
		"records": sum.Records,
		"skipped": sum.SkippedRows,
	}).Info("Step 2: End")

	return sum, nil
}

func (r *Runner) processDate(ctx context.Context, sess *portal.Session, day time.Time, sum *Summary) error {
	date := day.Format(model.DateLayout)
	log := r.logger().WithField("date", date)
	log.Info("Fetching the flight details")

	page, err := r.Fetcher.FetchDate(ctx, sess, day)
	if err != nil {
		return err
	}

	if r.Archive != nil {
		if err := r.Archive.SetWithExtension(PageKey(r.RunID, date), ".html", []byte(page)); err != nil {
			log.Warnf("Could not archive page: %v", err)
			sum.ArchiveErrors++
		}
	}

	res, err := extract.Flights(day, page)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", date, err)
	}
	for _, s := range res.Skipped {
		log.WithField("carrier", s.Carrier).Warnf("Skipping malformed markup: %s", s)
	}
	sum.SkippedRows += len(res.Skipped)

	for _, rec := range res.Records {
		if err := r.Writer.Write(rec); err != nil {
			return err
		}
	}
	sum.Records += len(res.Records)
	log.Infof("Found %d flights", len(res.Records))

	if r.Publisher != nil {
		if err := r.Publisher.ReplaceRecordsForDate(ctx, date, res.Records, r.RunID); err != nil {
			log.Warnf("Could not publish records: %v", err)
			sum.PublishErrors++
		}
	}
	return nil
}

func (r *Runner) pause(ctx context.Context, log logrus.FieldLogger, attempt int) error {
	if r.Delay == nil {
		return nil
	}
	wait := r.Delay(attempt)
	if wait <= 0 {
		return nil
	}
	log.Infof("Sleeping for %s", wait.Round(time.Millisecond))

	sleep := r.Sleep
	if sleep == nil {
		sleep = gax.Sleep
	}
	return sleep(ctx, wait)
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// PageKey is the archive key for the raw page fetched for date.
func PageKey(runID, date string) string {
	return path.Join("pages", runID, date)
}

// OutputKey is the archive key (without extension) for the run's tables and log.
func OutputKey(runID string) string {
	return path.Join("outputs", runID)
}

// ManifestKey is the archive key (without extension) for the run summary.
func ManifestKey(runID string) string {
	return path.Join("runs", runID)
}

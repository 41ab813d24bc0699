// Package config gathers the fetcher's settings from flags, the environment
// and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"miq-flights/internal/portal"
)

// Config holds the settings for one fetch run.
type Config struct {
	PortalURL      string
	OutputDir      string
	LogFile        string
	MinDelay       time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	MaxDates       int
	Debug          bool

	Browser    bool
	ChromePath string

	ArchiveDir    string
	ArchiveBucket string

	FirestoreProject    string
	FirestoreCollection string
}

// Load reads .env (if present), then parses args with environment
// variables supplying the flag defaults.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var e env
	cfg := &Config{}
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)

	fs.StringVar(&cfg.PortalURL, "url", e.getString("MIQ_PORTAL_URL", portal.DefaultURL), "flight-checker URL")
	fs.StringVar(&cfg.OutputDir, "out", e.getString("OUTPUT_DIR", "."), "directory for the CSV and XLSX files")
	fs.StringVar(&cfg.LogFile, "log", e.getString("LOG_FILE", "info.log"), "run log file (empty for stdout only)")
	fs.DurationVar(&cfg.MinDelay, "min-delay", e.getDuration("MIN_DELAY", time.Second), "shortest pause between date requests")
	fs.DurationVar(&cfg.MaxDelay, "max-delay", e.getDuration("MAX_DELAY", 4*time.Second), "longest pause between date requests")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", e.getDuration("REQUEST_TIMEOUT", 30*time.Second), "per-request timeout")
	fs.IntVar(&cfg.MaxRetries, "retries", e.getInt("MAX_RETRIES", 3), "retries per date on transient failures")
	fs.IntVar(&cfg.MaxDates, "max-dates", e.getInt("MAX_DATES", 0), "stop after this many dates (0 for all)")
	fs.BoolVar(&cfg.Debug, "debug", e.getBool("DEBUG", false), "debug logging")
	fs.BoolVar(&cfg.Browser, "browser", e.getBool("MIQ_BROWSER", false), "acquire the session with headless Chrome")
	fs.StringVar(&cfg.ChromePath, "chrome", e.getString("CHROME_PATH", ""), "Chrome executable for -browser")
	fs.StringVar(&cfg.ArchiveDir, "archive-dir", e.getString("ARCHIVE_DIR", ""), "keep raw pages and outputs in this directory")
	fs.StringVar(&cfg.ArchiveBucket, "archive-bucket", e.getString("ARCHIVE_BUCKET", ""), "keep raw pages and outputs in this GCS bucket")
	fs.StringVar(&cfg.FirestoreProject, "firestore-project", e.getString("FIRESTORE_PROJECT", ""), "publish records to Firestore in this GCP project")
	fs.StringVar(&cfg.FirestoreCollection, "firestore-collection", e.getString("FIRESTORE_COLLECTION", "flights"), "Firestore collection for records")

	if e.err != nil {
		return nil, e.err
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinDelay < 0 || c.MaxDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.MinDelay > c.MaxDelay {
		return fmt.Errorf("min delay %s exceeds max delay %s", c.MinDelay, c.MaxDelay)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.MaxDates < 0 {
		return fmt.Errorf("max dates must not be negative")
	}
	if c.ArchiveDir != "" && c.ArchiveBucket != "" {
		return fmt.Errorf("set only one of archive dir and archive bucket")
	}
	return nil
}

// env reads typed environment variables, remembering the first bad value.
type env struct {
	err error
}

func (e *env) getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (e *env) getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *env) getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *env) getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return b
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

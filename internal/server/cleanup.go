package server

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"
)

// SweepConfig holds configuration for the scratch-directory sweeper.
type SweepConfig struct {
	Enabled  bool
	Dir      string
	Interval time.Duration
	MaxAge   time.Duration
}

// SweepConfigFromEnv reads sweeper configuration from environment variables.
func SweepConfigFromEnv(dir string) SweepConfig {
	enabled := os.Getenv("UPS_CLEANUP_ENABLED") == "true"

	interval := 15 * time.Minute
	if v := os.Getenv("UPS_CLEANUP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			interval = d
		}
	}

	maxAge := 1 * time.Hour
	if v := os.Getenv("UPS_CLEANUP_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			maxAge = d
		}
	}

	return SweepConfig{Enabled: enabled, Dir: dir, Interval: interval, MaxAge: maxAge}
}

// StartTempSweeper periodically removes stale files from the scratch
// directory. Handlers delete their own temp files on every exit path; the
// sweeper only catches files orphaned by a crash between materialization and
// the deferred remove. Blocks until ctx is cancelled.
func StartTempSweeper(ctx context.Context, cfg SweepConfig) {
	if !cfg.Enabled {
		log.Printf("service=cleanup msg=%q", "disabled")
		return
	}

	log.Printf("service=cleanup msg=%q interval=%s max_age=%s", "starting", cfg.Interval, cfg.MaxAge)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	sweepOnce(cfg)

	for {
		select {
		case <-ctx.Done():
			log.Printf("service=cleanup msg=%q", "shutting_down")
			return
		case <-ticker.C:
			sweepOnce(cfg)
		}
	}
}

// sweepOnce removes scratch files older than MaxAge and returns how many went.
func sweepOnce(cfg SweepConfig) int {
	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("service=cleanup msg=%q err=%v", "read dir failed", err)
		}
		return 0
	}

	cutoff := time.Now().Add(-cfg.MaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(cfg.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("service=cleanup msg=%q path=%s err=%v", "remove failed", path, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("service=cleanup msg=%q removed=%d", "sweep_complete", removed)
	}
	return removed
}

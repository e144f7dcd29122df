package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// BackupScheduler writes a verified backup every interval and prunes old
// ones.
type BackupScheduler struct {
	db     *DB
	config SchedulerConfig
	now    func() time.Time

	mu           sync.RWMutex
	running      bool
	lastBackup   time.Time
	lastPath     string
	lastError    error
	backupCount  int
	failureCount int
}

// SchedulerConfig holds configuration for the backup scheduler.
type SchedulerConfig struct {
	// Interval is how often to run backups, e.g. 24*time.Hour.
	Interval time.Duration

	// Dir receives files named by BackupName.
	Dir string

	// Keep is how many backups in Dir survive pruning. 0 keeps all.
	Keep int

	// StartImmediately runs a backup as soon as Run is called.
	StartImmediately bool

	// OnBackupComplete is called after each attempt, success or failure.
	OnBackupComplete func(backupPath string, err error)
}

// NewBackupScheduler creates a scheduler backing up db.
func NewBackupScheduler(db *DB, config SchedulerConfig) *BackupScheduler {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	return &BackupScheduler{db: db, config: config, now: time.Now}
}

// Run backs up on every tick until ctx is done. It returns an error only
// when the scheduler is already running.
func (s *BackupScheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler is already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.config.StartImmediately {
		_, _ = s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// RunOnce takes one backup, prunes, and updates the statistics.
func (s *BackupScheduler) RunOnce(ctx context.Context) (string, error) {
	now := s.now()
	path := filepath.Join(s.config.Dir, BackupName(now))
	err := s.db.BackupTo(ctx, path)
	if err == nil {
		err = s.prune()
	} else {
		path = ""
	}

	s.mu.Lock()
	s.lastBackup = now
	s.lastError = err
	if path != "" {
		s.lastPath = path
	}
	if err != nil {
		s.failureCount++
	} else {
		s.backupCount++
	}
	s.mu.Unlock()

	if s.config.OnBackupComplete != nil {
		s.config.OnBackupComplete(path, err)
	}
	return path, err
}

// prune removes the oldest backups beyond Keep. Backup names sort by time.
func (s *BackupScheduler) prune() error {
	if s.config.Keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), backupSuffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.config.Keep {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-s.config.Keep] {
		if err := os.Remove(filepath.Join(s.config.Dir, name)); err != nil {
			return fmt.Errorf("failed to remove old backup: %w", err)
		}
	}
	return nil
}

// Status returns the current scheduler status.
func (s *BackupScheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nextBackup time.Time
	if s.running && !s.lastBackup.IsZero() {
		nextBackup = s.lastBackup.Add(s.config.Interval)
	}

	return SchedulerStatus{
		Running:      s.running,
		Interval:     s.config.Interval,
		LastBackup:   s.lastBackup,
		LastPath:     s.lastPath,
		NextBackup:   nextBackup,
		BackupCount:  s.backupCount,
		FailureCount: s.failureCount,
		LastError:    s.lastError,
	}
}

// IsRunning returns whether Run is active.
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// SchedulerStatus contains information about the scheduler state.
type SchedulerStatus struct {
	Running      bool
	Interval     time.Duration
	LastBackup   time.Time
	LastPath     string
	NextBackup   time.Time
	BackupCount  int
	FailureCount int
	LastError    error
}

// String returns a human-readable representation of the scheduler status.
func (s SchedulerStatus) String() string {
	if !s.Running {
		return "Scheduler: Stopped"
	}

	var b strings.Builder
	b.WriteString("Scheduler: Running\n")
	fmt.Fprintf(&b, "  Interval: %s\n", s.Interval)
	fmt.Fprintf(&b, "  Total Backups: %d\n", s.BackupCount)
	fmt.Fprintf(&b, "  Failures: %d\n", s.FailureCount)
	if !s.LastBackup.IsZero() {
		fmt.Fprintf(&b, "  Last Backup: %s\n", s.LastBackup.Format(time.RFC3339))
	}
	if !s.NextBackup.IsZero() {
		fmt.Fprintf(&b, "  Next Backup: %s\n", s.NextBackup.Format(time.RFC3339))
	}
	if s.LastError != nil {
		fmt.Fprintf(&b, "  Last Error: %v\n", s.LastError)
	}
	return b.String()
}

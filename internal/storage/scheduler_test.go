package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// steppingClock returns successive seconds from a fixed start.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func TestNewBackupScheduler_DefaultInterval(t *testing.T) {
	scheduler := NewBackupScheduler(OpenTestDB(t), SchedulerConfig{})
	if scheduler.config.Interval != 24*time.Hour {
		t.Errorf("Expected default interval 24h, got %v", scheduler.config.Interval)
	}
	if scheduler.IsRunning() {
		t.Error("Scheduler should not be running before Run")
	}
	if got := scheduler.Status().String(); got != "Scheduler: Stopped" {
		t.Errorf("Status() = %q", got)
	}
}

func TestBackupScheduler_RunOncePrunes(t *testing.T) {
	dir := t.TempDir()
	var completed []string
	scheduler := NewBackupScheduler(OpenTestDB(t), SchedulerConfig{
		Interval: time.Hour,
		Dir:      dir,
		Keep:     2,
		OnBackupComplete: func(path string, err error) {
			if err != nil {
				t.Errorf("backup failed: %v", err)
			}
			completed = append(completed, path)
		},
	})
	scheduler.now = steppingClock()

	// An unrelated file is never pruned.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := scheduler.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"notes.txt", "war-record_20240501_000002.db", "war-record_20240501_000003.db"}
	if len(names) != len(want) {
		t.Fatalf("backup dir = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("backup dir = %v, want %v", names, want)
			break
		}
	}

	status := scheduler.Status()
	if status.BackupCount != 3 || status.FailureCount != 0 {
		t.Errorf("counts = %d/%d, want 3/0", status.BackupCount, status.FailureCount)
	}
	if status.LastPath != filepath.Join(dir, "war-record_20240501_000003.db") {
		t.Errorf("LastPath = %s", status.LastPath)
	}
	if len(completed) != 3 {
		t.Errorf("OnBackupComplete called %d times, want 3", len(completed))
	}
}

func TestBackupScheduler_FailureCounted(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	scheduler := NewBackupScheduler(OpenTestDB(t), SchedulerConfig{Dir: dir})
	scheduler.now = func() time.Time { return clock }

	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce() error = %v", err)
	}
	// Same timestamp, so the target exists.
	path, err := scheduler.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected an error when the backup target exists")
	}
	if path != "" {
		t.Errorf("failed backup path = %q, want empty", path)
	}

	status := scheduler.Status()
	if status.BackupCount != 1 || status.FailureCount != 1 || status.LastError == nil {
		t.Errorf("status = %+v", status)
	}
}

func TestBackupScheduler_Run(t *testing.T) {
	done := make(chan string, 1)
	scheduler := NewBackupScheduler(OpenTestDB(t), SchedulerConfig{
		Interval:         time.Hour,
		Dir:              t.TempDir(),
		StartImmediately: true,
		OnBackupComplete: func(path string, _ error) {
			select {
			case done <- path:
			default:
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- scheduler.Run(ctx) }()

	select {
	case path := <-done:
		if _, err := os.Stat(path); err != nil {
			t.Errorf("backup not written: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("immediate backup did not run")
	}

	if !scheduler.IsRunning() {
		t.Error("scheduler should be running")
	}
	if err := scheduler.Run(ctx); err == nil {
		t.Error("second Run should fail while running")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if scheduler.IsRunning() {
		t.Error("scheduler should stop with its context")
	}
}

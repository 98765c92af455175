package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type mockSessionPurger struct {
	called bool
	count  int64
	err    error
}

func (m *mockSessionPurger) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.called = true
	return m.count, m.err
}

type mockNotificationTrimmer struct {
	called bool
	keep   int
	count  int
	err    error
}

func (m *mockNotificationTrimmer) Trim(ctx context.Context, keep int) (int, error) {
	m.called = true
	m.keep = keep
	return m.count, m.err
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestNewCleanupJob_DefaultNotificationKeep(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionPurger{}, &mockNotificationTrimmer{}, newTestLogger(&buf))

	if job.NotificationKeep != 100 {
		t.Errorf("NotificationKeep = %d, want 100", job.NotificationKeep)
	}
}

func TestCleanupJob_Run_PurgesAndTrims(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockSessionPurger{count: 7}
	trimmer := &mockNotificationTrimmer{count: 12}
	job := NewCleanupJob(purger, trimmer, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !purger.called {
		t.Error("expected session purge to be called")
	}
	if !trimmer.called {
		t.Error("expected notification trim to be called")
	}
	if trimmer.keep != 100 {
		t.Errorf("trim keep = %d, want 100", trimmer.keep)
	}
}

func TestCleanupJob_Run_LogsCounts(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionPurger{count: 3}, &mockNotificationTrimmer{count: 5}, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 完了ログに削除件数が含まれることを確認
	var entry map[string]any
	found := false
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry["msg"] == "クリーンアップジョブが完了しました" {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("completion log entry not found")
	}
	if entry["purged_sessions"] != float64(3) {
		t.Errorf("purged_sessions = %v, want 3", entry["purged_sessions"])
	}
	if entry["trimmed_notifications"] != float64(5) {
		t.Errorf("trimmed_notifications = %v, want 5", entry["trimmed_notifications"])
	}
}

func TestCleanupJob_Run_SessionPurgeError(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockSessionPurger{err: errors.New("db down")}
	trimmer := &mockNotificationTrimmer{}
	job := NewCleanupJob(purger, trimmer, newTestLogger(&buf))

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if trimmer.called {
		t.Error("trim should not run after purge failure")
	}
}

func TestCleanupJob_Run_TrimError(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionPurger{}, &mockNotificationTrimmer{err: errors.New("kv down")}, newTestLogger(&buf))

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestScheduler_Start_StopsOnContextCancel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	job := NewCleanupJob(&mockSessionPurger{}, &mockNotificationTrimmer{}, logger)
	scheduler := NewScheduler(job, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendorsuite/ordersplit-backend/pkg/logger"
	"gorm.io/gorm"
)

type fakeRetentionRepo struct {
	cutoff      time.Time
	minAttempts int
	calls       int
	err         error
}

func (f *fakeRetentionRepo) DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	f.minAttempts = minAttemptCount
	if f.err != nil {
		return 0, f.err
	}
	return 7, nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func buildRetentionJob(t *testing.T, repo *fakeRetentionRepo, retention, minAttempts int) *outboxRetentionJob {
	t.Helper()
	built, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:          passthroughTxRunner{},
		Repository:  repo,
		Retention:   retention,
		MinAttempts: minAttempts,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := built.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("expected outboxRetentionJob, got %T", built)
	}
	return job
}

func TestOutboxRetentionJobUsesConfiguredWindow(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	repo := &fakeRetentionRepo{}
	job := buildRetentionJob(t, repo, 14, 5)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantCutoff := now.AddDate(0, 0, -14)
	if !repo.cutoff.Equal(wantCutoff) {
		t.Fatalf("expected cutoff %s, got %s", wantCutoff, repo.cutoff)
	}
	if repo.minAttempts != 5 {
		t.Fatalf("expected min attempts 5, got %d", repo.minAttempts)
	}
	if repo.calls != 1 {
		t.Fatalf("expected repo called once, got %d", repo.calls)
	}
}

func TestOutboxRetentionJobDefaultsWindow(t *testing.T) {
	repo := &fakeRetentionRepo{}
	job := buildRetentionJob(t, repo, 0, 0)

	if job.retention != defaultRetentionDays {
		t.Fatalf("expected default retention %d, got %d", defaultRetentionDays, job.retention)
	}
	if job.minAttempts != defaultMinAttempts {
		t.Fatalf("expected default min attempts %d, got %d", defaultMinAttempts, job.minAttempts)
	}
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeRetentionRepo{err: errors.New("boom")}
	job := buildRetentionJob(t, repo, 0, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

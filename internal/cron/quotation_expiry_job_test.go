package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

type fakeExpirer struct {
	batches []int
	calls   int
	err     error
}

func (f *fakeExpirer) ExpireDue(_ context.Context, _ time.Time, _ int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.calls >= len(f.batches) {
		return 0, nil
	}
	n := f.batches[f.calls]
	f.calls++
	return n, nil
}

func newExpiryJob(t *testing.T, expirer quotationExpirer, batchSize int) Job {
	t.Helper()
	job, err := NewQuotationExpiryJob(QuotationExpiryJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Quotations: expirer,
		BatchSize:  batchSize,
		Now:        func() time.Time { return time.Date(2025, 8, 1, 3, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	return job
}

func TestQuotationExpiryJobSweepsUntilShortBatch(t *testing.T) {
	expirer := &fakeExpirer{batches: []int{10, 10, 3}}
	job := newExpiryJob(t, expirer, 10)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if expirer.calls != 3 {
		t.Fatalf("expected 3 batches, got %d", expirer.calls)
	}
}

func TestQuotationExpiryJobStopsOnEmptyBacklog(t *testing.T) {
	expirer := &fakeExpirer{batches: []int{0}}
	job := newExpiryJob(t, expirer, 10)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if expirer.calls > 1 {
		t.Fatalf("expected a single batch, got %d", expirer.calls)
	}
}

func TestQuotationExpiryJobPropagatesErrors(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("db down")}
	job := newExpiryJob(t, expirer, 10)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error from failing sweep")
	}
}

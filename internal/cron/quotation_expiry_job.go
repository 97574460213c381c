package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
	"github.com/lucasmoraes/clinicore-backend/pkg/metrics"
)

const (
	quotationExpiryJobName = "quotation_expiry"
	defaultExpiryBatchSize = 500
)

type quotationExpirer interface {
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)
}

// QuotationExpiryJobParams configure the quotation TTL sweep.
type QuotationExpiryJobParams struct {
	Logger     *logger.Logger
	Quotations quotationExpirer
	Metrics    *metrics.CronJobMetrics
	BatchSize  int
	Now        func() time.Time
}

type quotationExpiryJob struct {
	logg       *logger.Logger
	quotations quotationExpirer
	metrics    *metrics.CronJobMetrics
	batchSize  int
	now        func() time.Time
}

// NewQuotationExpiryJob builds the job that expires quotations past their
// validity deadline.
func NewQuotationExpiryJob(params QuotationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Quotations == nil {
		return nil, fmt.Errorf("quotations service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &quotationExpiryJob{
		logg:       params.Logger,
		quotations: params.Quotations,
		metrics:    params.Metrics,
		batchSize:  batchSize,
		now:        now,
	}, nil
}

func (j *quotationExpiryJob) Name() string {
	return quotationExpiryJobName
}

// Run sweeps in batches until a batch comes back short, so one oversized
// backlog cannot hold a cycle open indefinitely.
func (j *quotationExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now()
	total := 0
	for {
		expired, err := j.quotations.ExpireDue(ctx, cutoff, j.batchSize)
		total += expired
		if err != nil {
			return fmt.Errorf("expiring quotations: %w", err)
		}
		if expired < j.batchSize {
			break
		}
	}

	if j.metrics != nil {
		j.metrics.AddExpiredQuotations(total)
	}
	logCtx := j.logg.WithField(ctx, "expired", total)
	j.logg.Info(logCtx, "quotation expiry sweep finished")
	return nil
}

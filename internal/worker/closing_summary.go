package worker

// Processes closing-summary jobs: formats the reconciliation result of a
// closed session and emails it to the configured address. SMTP goes through
// the circuit breaker; failures are rescheduled with backoff and end up in
// the DLQ after MaxSummaryRetries.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cashdesk/internal/infra"
)

const MaxSummaryRetries = 5

// ClosingSummaryWorker sends reconciliation summaries after a session closes.
type ClosingSummaryWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	to     string
}

func NewClosingSummaryWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, to string) *ClosingSummaryWorker {
	return &ClosingSummaryWorker{mailer: mailer, cb: cb, to: to}
}

// Process handles one job. On failure the job is rescheduled with exponential
// backoff via the retry zset; past MaxSummaryRetries it goes to the DLQ.
func (w *ClosingSummaryWorker) Process(ctx context.Context, rdb *redis.Client, job Job) {
	var payload ClosingSummaryPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("closing_summary: invalid payload")
		return
	}
	if w.to == "" {
		log.Debug().Str("session_id", payload.SessionID).
			Msg("closing_summary: no recipient configured — skipping")
		return
	}

	subject := fmt.Sprintf("Register %s closed — difference %s (%s)",
		payload.RegisterNumber, payload.Difference, payload.Level)
	body := fmt.Sprintf(
		"Session %s on register %s closed at %s.\n\nExpected: %s\nCounted:  %s\nDifference: %s (%s)\n",
		payload.SessionID, payload.RegisterNumber, payload.ClosedAt,
		payload.Expected, payload.Actual, payload.Difference, payload.Level)

	err := w.cb.Execute(func() error {
		return w.mailer.SendClosingSummary(w.to, subject, body)
	})
	if err == nil {
		log.Info().Str("session_id", payload.SessionID).Str("to", w.to).
			Msg("closing_summary: sent")
		return
	}

	job.Attempts++
	if job.Attempts >= MaxSummaryRetries {
		SendToDLQ(ctx, rdb, QueueClosingSummary, job.Type, job.Payload,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxSummaryRetries, err), job.Attempts)
		return
	}

	due := time.Now().Add(summaryBackoff(job.Attempts))
	if err := scheduleRetry(ctx, rdb, job, due); err != nil {
		log.Error().Err(err).Str("session_id", payload.SessionID).
			Msg("closing_summary: failed to schedule retry")
		return
	}
	log.Warn().Str("session_id", payload.SessionID).Int("attempts", job.Attempts).
		Time("next_attempt", due).Msg("closing_summary: send failed, retry scheduled")
}

// summaryBackoff doubles per attempt: 30s, 1m, 2m, 4m.
func summaryBackoff(attempts int) time.Duration {
	d := 30 * time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
	}
	return d
}

func scheduleRetry(ctx context.Context, rdb *redis.Client, job Job, due time.Time) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.ZAdd(ctx, RetryZSet, redis.Z{
		Score:  float64(due.Unix()),
		Member: encoded,
	}).Err()
}

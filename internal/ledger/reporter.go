package ledger

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"cashdesk/internal/model"
)

// Summary aggregates a set of sessions for reporting views.
type Summary struct {
	Sessions        int
	OpeningTotal    decimal.Decimal
	ActualTotal     decimal.Decimal
	DifferenceTotal decimal.Decimal
}

// Summarize totals opening amounts, actual closing amounts and differences
// over the given sessions. Open sessions contribute only their opening amount.
func Summarize(sessions []model.CashSession) Summary {
	s := Summary{
		Sessions:        len(sessions),
		OpeningTotal:    decimal.Zero,
		ActualTotal:     decimal.Zero,
		DifferenceTotal: decimal.Zero,
	}
	for _, sess := range sessions {
		s.OpeningTotal = s.OpeningTotal.Add(sess.OpeningAmount)
		if sess.ActualClosingAmount != nil {
			s.ActualTotal = s.ActualTotal.Add(*sess.ActualClosingAmount)
		}
		if sess.Difference != nil {
			s.DifferenceTotal = s.DifferenceTotal.Add(*sess.Difference)
		}
	}
	return s
}

// Bucket is one {label, total} pair of a period breakdown.
type Bucket struct {
	Label string
	Total decimal.Decimal
}

// ByPeriod groups transaction amounts into fixed-width time buckets for
// charting. The returned sequence is lazy, finite and restartable, and covers
// every bucket from `from` to `to` — buckets without transactions yield a zero
// total; callers that want only non-empty buckets must filter explicitly.
// Expenses count negative so a bucket total is the net drawer movement.
func ByPeriod(txs []model.CashTransaction, from, to time.Time, step time.Duration, label func(time.Time) string) iter.Seq[Bucket] {
	return func(yield func(Bucket) bool) {
		if step <= 0 || !from.Before(to) {
			return
		}
		totals := make(map[time.Time]decimal.Decimal)
		start := from.Truncate(step)
		for _, tx := range txs {
			at := tx.CreatedAt.Truncate(step)
			if at.Before(start) || !at.Before(to) {
				continue
			}
			amount := tx.Amount
			if tx.Type == model.TransactionExpense {
				amount = amount.Neg()
			}
			totals[at] = totals[at].Add(amount)
		}
		for b := start; b.Before(to); b = b.Add(step) {
			total, ok := totals[b]
			if !ok {
				total = decimal.Zero
			}
			if !yield(Bucket{Label: label(b), Total: total}) {
				return
			}
		}
	}
}

// ByHour buckets transactions per hour.
func ByHour(txs []model.CashTransaction, from, to time.Time) iter.Seq[Bucket] {
	return ByPeriod(txs, from, to, time.Hour, func(t time.Time) string {
		return t.Format("2006-01-02 15:00")
	})
}

// ByDay buckets transactions per day.
func ByDay(txs []model.CashTransaction, from, to time.Time) iter.Seq[Bucket] {
	return ByPeriod(txs, from, to, 24*time.Hour, func(t time.Time) string {
		return t.Format("2006-01-02")
	})
}

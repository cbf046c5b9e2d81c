// Package ledger computes derived aggregates over a session's transaction
// list. Everything here is a pure function over a snapshot — nothing mutates
// stored data, and all arithmetic is decimal to avoid binary floating-point
// drift across many small transactions.
package ledger

import (
	"github.com/shopspring/decimal"

	"cashdesk/internal/model"
)

// SumByType sums the amounts of entries matching t. Returns zero for empty
// input.
func SumByType(txs []model.CashTransaction, t model.TransactionType) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Type == t {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// ExpectedClosingAmount derives what the drawer should hold:
// opening + Σ(sale) + Σ(income) − Σ(expense). The result is independent of
// entry order (commutative sum) and is computed from whatever snapshot the
// caller hands in.
func ExpectedClosingAmount(opening decimal.Decimal, txs []model.CashTransaction) decimal.Decimal {
	return opening.
		Add(SumByType(txs, model.TransactionSale)).
		Add(SumByType(txs, model.TransactionIncome)).
		Sub(SumByType(txs, model.TransactionExpense))
}

// Difference levels. An over/short drawer is a reportable fact, not an error —
// the level never blocks closing.
const (
	LevelOK       = "ok"       // |difference| ≤ 1% of expected
	LevelWarning  = "warning"  // ≤ 5%
	LevelCritical = "critical" // > 5%
)

// ClassifyDifference grades diff against the expected amount. A zero expected
// amount with any difference grades critical.
func ClassifyDifference(diff, expected decimal.Decimal) string {
	if diff.IsZero() {
		return LevelOK
	}
	if expected.IsZero() {
		return LevelCritical
	}
	pct := diff.Div(expected).Mul(decimal.NewFromInt(100)).Abs()
	switch {
	case pct.LessThanOrEqual(decimal.NewFromInt(1)):
		return LevelOK
	case pct.LessThanOrEqual(decimal.NewFromInt(5)):
		return LevelWarning
	default:
		return LevelCritical
	}
}

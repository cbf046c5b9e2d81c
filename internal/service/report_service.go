package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/ledger"
	"cashdesk/internal/repository"
)

// ReportService is the read side: it derives presentation aggregates from
// sessions and ledgers already retrieved and never mutates state.
type ReportService interface {
	Summary(ctx context.Context, f dto.SessionFilter) (*dto.SummaryResponse, error)
	SessionBuckets(ctx context.Context, sessionID uuid.UUID, by string) ([]dto.BucketResponse, error)
}

type reportService struct {
	sessions repository.SessionRepository
}

func NewReportService(sessions repository.SessionRepository) ReportService {
	return &reportService{sessions: sessions}
}

func (s *reportService) Summary(ctx context.Context, f dto.SessionFilter) (*dto.SummaryResponse, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 1000
	}
	sessions, _, err := s.sessions.ListSessions(ctx, f)
	if err != nil {
		return nil, storeErr(err, "sessions not found")
	}
	sum := ledger.Summarize(sessions)
	return &dto.SummaryResponse{
		Sessions:        sum.Sessions,
		OpeningTotal:    sum.OpeningTotal,
		ActualTotal:     sum.ActualTotal,
		DifferenceTotal: sum.DifferenceTotal,
	}, nil
}

// SessionBuckets breaks a session's transaction totals into hourly or daily
// buckets spanning open time to close time (or now for open sessions). Every
// bucket in range is emitted, zero-value ones included.
func (s *reportService) SessionBuckets(ctx context.Context, sessionID uuid.UUID, by string) ([]dto.BucketResponse, error) {
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, storeErr(err, "session not found")
	}

	from := session.OpenedAt
	to := time.Now().UTC()
	if session.ClosedAt != nil {
		to = *session.ClosedAt
	}
	// A degenerate range still yields the opening bucket.
	if !from.Before(to) {
		to = from.Add(time.Second)
	}

	var buckets []dto.BucketResponse
	switch by {
	case "hour":
		for b := range ledger.ByHour(session.Transactions, from, to) {
			buckets = append(buckets, dto.BucketResponse{Label: b.Label, Total: b.Total})
		}
	case "day":
		for b := range ledger.ByDay(session.Transactions, from, to) {
			buckets = append(buckets, dto.BucketResponse{Label: b.Label, Total: b.Total})
		}
	default:
		return nil, apierror.Validation("by must be hour or day")
	}
	return buckets, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-budgets/internal/logger"
	"github.com/diewo77/go-budgets/internal/metrics"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExpiryResult counts the quotes marked expired by one batch run.
type ExpiryResult struct {
	Quotes  int64 `json:"quotes"`
	Picking int64 `json:"picking"`
}

// ExpiryService persists the expiry that quoting.EffectiveStatus computes lazily.
type ExpiryService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewExpiryService(db *gorm.DB, log *zap.Logger) *ExpiryService {
	return &ExpiryService{db: db, log: logger.OrNop(log)}
}

var openStatuses = []quoting.Status{quoting.StatusUnsent, quoting.StatusDraft, quoting.StatusSent}

// ExpireOverdue marks open quotes whose validity date is before now's date as expired.
func (s *ExpiryService) ExpireOverdue(ctx context.Context, now time.Time) (ExpiryResult, error) {
	today := dateOnly(now)
	var res ExpiryResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Quote{}).
			Where("status IN ? AND expiry_date < ?", openStatuses, today).
			Update("status", quoting.StatusExpired)
		if q.Error != nil {
			return fmt.Errorf("expire quotes: %w", q.Error)
		}
		res.Quotes = q.RowsAffected

		p := tx.Model(&models.PickingQuote{}).
			Where("status IN ? AND valid_until < ?", openStatuses, today).
			Update("status", quoting.StatusExpired)
		if p.Error != nil {
			return fmt.Errorf("expire picking quotes: %w", p.Error)
		}
		res.Picking = p.RowsAffected
		return nil
	})
	if err != nil {
		return res, err
	}
	metrics.Transitions.WithLabelValues(metrics.KindMerchandise, string(quoting.StatusExpired)).Add(float64(res.Quotes))
	metrics.Transitions.WithLabelValues(metrics.KindPicking, string(quoting.StatusExpired)).Add(float64(res.Picking))
	s.log.Info("expired overdue quotes", zap.Int64("quotes", res.Quotes), zap.Int64("picking", res.Picking))
	return res, nil
}

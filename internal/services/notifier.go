package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-budgets/internal/logger"
	"github.com/diewo77/go-budgets/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier tells a seller about a quote assigned to them. Delivery is best effort.
type Notifier interface {
	QuoteAssigned(ctx context.Context, seller *models.User, q *models.Quote) error
}

// DBNotifier stores dashboard notifications.
type DBNotifier struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDBNotifier(db *gorm.DB, log *zap.Logger) *DBNotifier {
	return &DBNotifier{db: db, log: logger.OrNop(log)}
}

func (n *DBNotifier) QuoteAssigned(ctx context.Context, seller *models.User, q *models.Quote) error {
	note := models.Notification{
		UserID:  seller.ID,
		Type:    models.NotificationDashboard,
		Title:   "Nueva solicitud de presupuesto",
		Message: fmt.Sprintf("Se te asignó el presupuesto #%d: %s", q.ID, q.Title),
		QuoteID: &q.ID,
		SentAt:  q.CreatedAt,
	}
	if err := n.db.WithContext(ctx).Create(&note).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	n.log.Debug("seller notified", zap.Uint("seller_id", seller.ID), zap.Uint("quote_id", q.ID))
	return nil
}

// NotificationService reads and acknowledges a user's notifications.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	var notes []models.Notification
	db := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("read = ?", false)
	}
	err := db.Order("created_at DESC, id DESC").Limit(100).Find(&notes).Error
	return notes, err
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

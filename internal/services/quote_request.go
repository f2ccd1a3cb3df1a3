package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/go-budgets/internal/metrics"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/validation"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WarningNotificationFailed is reported when the seller could not be notified.
const WarningNotificationFailed = "notification_failed"

// CustomerInput is the contact data of a web quote request.
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
}

// RequestItem is one cart entry.
type RequestItem struct {
	ProductID uint  `json:"product_id"`
	VariantID *uint `json:"variant_id,omitempty"`
	Quantity  int   `json:"quantity"`
}

// QuoteRequestInput is the payload of the public quote request form.
type QuoteRequestInput struct {
	Customer CustomerInput `json:"customer"`
	Items    []RequestItem `json:"items"`
	Comments string        `json:"comments,omitempty"`
}

func (in *QuoteRequestInput) validate() error {
	in.Customer.Name = strings.TrimSpace(in.Customer.Name)
	in.Customer.Email = models.NormalizeEmail(in.Customer.Email)
	v := validation.Violations{}
	validation.Required("customer.name", in.Customer.Name, v)
	validation.Email("customer.email", in.Customer.Email, v)
	if len(in.Items) == 0 {
		v.Add("items", "required")
	}
	for i, it := range in.Items {
		validation.RequiredID(fmt.Sprintf("items[%d].product_id", i), it.ProductID, v)
		validation.PositiveInt(fmt.Sprintf("items[%d].quantity", i), it.Quantity, v)
	}
	return invalid(v)
}

// RequestResult is the outcome of a submitted quote request.
type RequestResult struct {
	Quote         *models.Quote  `json:"quote"`
	Client        *models.Client `json:"client"`
	ClientCreated bool           `json:"client_created"`
	Seller        *models.User   `json:"seller"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// QuoteRequestService turns public quote requests into quotes assigned by rotation.
type QuoteRequestService struct {
	db       *gorm.DB
	quotes   *QuoteService
	assignor *SellerAssignor
	notifier Notifier
	opts     Options
}

func NewQuoteRequestService(db *gorm.DB, quotes *QuoteService, assignor *SellerAssignor, notifier Notifier, opts Options) *QuoteRequestService {
	return &QuoteRequestService{db: db, quotes: quotes, assignor: assignor, notifier: notifier, opts: opts.withDefaults()}
}

// Submit creates the client (if new), the quote and its items in one
// transaction. Without an active seller nothing is written. The seller is
// notified after commit; a delivery failure only adds a warning.
func (s *QuoteRequestService) Submit(ctx context.Context, in QuoteRequestInput) (*RequestResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	res := &RequestResult{}
	err = transaction(ctx, s.db, func(tx *gorm.DB) error {
		client, created, err := findOrCreateClient(ctx, tx, in.Customer)
		if err != nil {
			return err
		}
		res.Client, res.ClientCreated = client, created

		seller, err := s.assignor.Next(ctx, tx, models.AssignmentTypeMerchBudget)
		if err != nil {
			return err
		}
		res.Seller = seller

		issue := s.opts.today()
		q := &models.Quote{
			Title:          "Solicitud web - " + in.Customer.Name,
			UserID:         seller.ID,
			ClientID:       client.ID,
			IssueDate:      issue,
			ExpiryDate:     issue.AddDate(0, 0, s.opts.ValidityDays),
			FooterComments: in.Comments,
			Status:         quoting.StatusUnsent,
			Source:         models.SourceWeb,
		}
		if err := tx.Create(q).Error; err != nil {
			return fmt.Errorf("create quote: %w", err)
		}

		items, err := requestItems(ctx, tx, q.ID, in.Items)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create items: %w", err)
			}
		}
		if err := s.quotes.recalculate(ctx, tx, q); err != nil {
			return err
		}

		audit := models.QuoteRequest{
			Email:    in.Customer.Email,
			ClientID: client.ID,
			QuoteID:  q.ID,
			SellerID: seller.ID,
			Payload:  datatypes.JSON(payload),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("store request: %w", err)
		}
		res.Quote = q
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoSellerAvailable) {
			s.opts.Log.Error("quote request rejected: no active seller", zap.String("email", in.Customer.Email))
		}
		return nil, err
	}
	metrics.QuotesCreated.WithLabelValues(metrics.KindMerchandise, models.SourceWeb).Inc()

	if q, err := s.quotes.Get(ctx, res.Quote.ID); err == nil {
		res.Quote = q
	}
	if s.notifier != nil {
		if err := s.notifier.QuoteAssigned(ctx, res.Seller, res.Quote); err != nil {
			metrics.NotificationFailures.Inc()
			s.opts.Log.Warn("seller notification failed",
				zap.Uint("quote_id", res.Quote.ID), zap.Uint("seller_id", res.Seller.ID), zap.Error(err))
			res.Warnings = append(res.Warnings, WarningNotificationFailed)
		}
	}
	return res, nil
}

// findOrCreateClient looks the client up by email. Existing clients are never modified.
func findOrCreateClient(ctx context.Context, tx *gorm.DB, c CustomerInput) (*models.Client, bool, error) {
	var client models.Client
	err := tx.WithContext(ctx).Where("email = ?", c.Email).Order("id").First(&client).Error
	if err == nil {
		return &client, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find client: %w", err)
	}
	client = models.Client{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   strings.TrimSpace(c.Phone),
		Company: strings.TrimSpace(c.Company),
		Address: strings.TrimSpace(c.Address),
	}
	if err := tx.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, false, fmt.Errorf("create client: %w", err)
	}
	return &client, true, nil
}

// requestItems prices the cart entries and orders them by product name.
// Unknown products keep an empty name and a zero price.
func requestItems(ctx context.Context, tx *gorm.DB, quoteID uint, entries []RequestItem) ([]models.QuoteItem, error) {
	items := make([]models.QuoteItem, 0, len(entries))
	for _, e := range entries {
		item := models.QuoteItem{QuoteID: quoteID}
		if err := fillItem(ctx, tx, &item, ItemInput{ProductID: e.ProductID, VariantID: e.VariantID, Quantity: e.Quantity}); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].ProductName) < strings.ToLower(items[j].ProductName)
	})
	for i := range items {
		items[i].Position = i
	}
	return items, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/diewo77/go-budgets/internal/metrics"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteService manages merchandise quotes and their line items.
type QuoteService struct {
	db   *gorm.DB
	opts Options
}

func NewQuoteService(db *gorm.DB, opts Options) *QuoteService {
	return &QuoteService{db: db, opts: opts.withDefaults()}
}

// QuoteInput is the editable header of a merchandise quote. Zero dates default
// to today and today plus the validity window.
type QuoteInput struct {
	Title          string
	ClientID       uint
	IssueDate      time.Time
	ExpiryDate     time.Time
	FooterComments string
}

func (s *QuoteService) normalizeHeader(in *QuoteInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.IssueDate.IsZero() {
		in.IssueDate = s.opts.today()
	}
	in.IssueDate = dateOnly(in.IssueDate)
	if in.ExpiryDate.IsZero() {
		in.ExpiryDate = in.IssueDate.AddDate(0, 0, s.opts.ValidityDays)
	}
	in.ExpiryDate = dateOnly(in.ExpiryDate)

	v := validation.Violations{}
	validation.RequiredID("client_id", in.ClientID, v)
	validation.MaxLen("title", in.Title, 255, v)
	validation.DateOrder("expiry_date", in.IssueDate, in.ExpiryDate, v)
	if !models.ValidDates(in.IssueDate, in.ExpiryDate) {
		v.Add("expiry_date", "out_of_range")
	}
	return invalid(v)
}

func requireClient(ctx context.Context, tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("load client: %w", err)
	}
	if n == 0 {
		return invalidField("client_id", "not_found")
	}
	return nil
}

// Create starts an unsent quote owned by the actor.
func (s *QuoteService) Create(ctx context.Context, actor quoting.Actor, in QuoteInput) (*models.Quote, error) {
	if err := s.normalizeHeader(&in); err != nil {
		return nil, err
	}
	q := &models.Quote{
		Title:          in.Title,
		UserID:         actor.UserID,
		ClientID:       in.ClientID,
		IssueDate:      in.IssueDate,
		ExpiryDate:     in.ExpiryDate,
		FooterComments: in.FooterComments,
		Status:         quoting.StatusUnsent,
		Source:         models.SourceInternal,
	}
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := requireClient(ctx, tx, in.ClientID); err != nil {
			return err
		}
		if err := tx.Create(q).Error; err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	metrics.QuotesCreated.WithLabelValues(metrics.KindMerchandise, q.Source).Inc()
	return s.Get(ctx, q.ID)
}

// UpdateHeader changes the header of an editable quote.
func (s *QuoteService) UpdateHeader(ctx context.Context, id uint, in QuoteInput) (*models.Quote, error) {
	if err := s.normalizeHeader(&in); err != nil {
		return nil, err
	}
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := requireClient(ctx, tx, in.ClientID); err != nil {
			return err
		}
		return tx.Model(q).Updates(map[string]any{
			"title":           in.Title,
			"client_id":       in.ClientID,
			"issue_date":      in.IssueDate,
			"expiry_date":     in.ExpiryDate,
			"footer_comments": in.FooterComments,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get loads a quote with its client, seller and items in stored order.
func (s *QuoteService) Get(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err, ErrQuoteNotFound, "quote")
	}
	return &q, nil
}

// ListFilter narrows List. A nil OwnerID lists every seller's quotes.
type ListFilter struct {
	OwnerID  *uint
	ClientID uint
	Status   quoting.Status
	Limit    int
	Offset   int
}

// apply narrows db. The status filter matches the effective status, with
// validColumn holding the validity date.
func (f ListFilter) apply(db *gorm.DB, validColumn string, today time.Time) *gorm.DB {
	if f.OwnerID != nil {
		db = db.Where("user_id = ?", *f.OwnerID)
	}
	if f.ClientID != 0 {
		db = db.Where("client_id = ?", f.ClientID)
	}
	switch {
	case f.Status == "":
	case f.Status == quoting.StatusExpired:
		db = db.Where("(status = ? OR (status IN ? AND "+validColumn+" < ?))", f.Status, openStatuses, today)
	case slices.Contains(openStatuses, f.Status):
		db = db.Where("status = ? AND "+validColumn+" >= ?", f.Status, today)
	default:
		db = db.Where("status = ?", f.Status)
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return db.Limit(limit).Offset(f.Offset)
}

// List returns quote headers, newest first.
func (s *QuoteService) List(ctx context.Context, f ListFilter) ([]models.Quote, error) {
	var quotes []models.Quote
	err := f.apply(s.db.WithContext(ctx).Preload("Client"), "expiry_date", s.opts.today()).Order("created_at DESC, id DESC").Find(&quotes).Error
	return quotes, err
}

// ItemInput describes a line item. A nil UnitPrice takes the catalog price of the
// product or variant, zero when the product is unknown.
type ItemInput struct {
	ProductID         uint             `json:"product_id"`
	VariantID         *uint            `json:"variant_id,omitempty"`
	ProductName       string           `json:"product_name"`
	VariantName       string           `json:"variant_name"`
	Quantity          int              `json:"quantity"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	ProductionTime    string           `json:"production_time"`
	CustomizationNote string           `json:"customization_note"`
	VariantGroup      string           `json:"variant_group"`
	IsSelected        bool             `json:"is_selected"`
}

func (in ItemInput) validate() error {
	v := validation.Violations{}
	validation.PositiveInt("quantity", in.Quantity, v)
	if in.UnitPrice != nil {
		validation.NonNegativeDecimal("unit_price", *in.UnitPrice, v)
	}
	validation.MaxLen("variant_group", strings.TrimSpace(in.VariantGroup), 100, v)
	if in.ProductID == 0 && strings.TrimSpace(in.ProductName) == "" {
		v.Add("product_name", "required")
	}
	return invalid(v)
}

// fillItem copies the input onto item, resolving catalog names and prices.
func fillItem(ctx context.Context, tx *gorm.DB, item *models.QuoteItem, in ItemInput) error {
	item.ProductID = in.ProductID
	item.VariantID = in.VariantID
	item.ProductName = strings.TrimSpace(in.ProductName)
	item.VariantName = strings.TrimSpace(in.VariantName)
	item.Quantity = in.Quantity
	item.ProductionTime = in.ProductionTime
	item.CustomizationNote = in.CustomizationNote
	item.VariantGroup = in.VariantGroup
	item.IsSelected = in.IsSelected

	price := decimal.Zero
	if in.ProductID != 0 {
		product, variant, err := lookupProduct(ctx, tx, in.ProductID, in.VariantID)
		if err != nil {
			return err
		}
		if product != nil {
			price = product.PriceFor(variant)
			if item.ProductName == "" {
				item.ProductName = product.Name
			}
			if item.ProductionTime == "" {
				item.ProductionTime = product.ProductionTime
			}
		}
		if variant != nil && item.VariantName == "" {
			item.VariantName = variant.Name
		}
		if variant == nil {
			item.VariantID = nil
		}
	}
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}
	item.UnitPrice = price
	item.Normalize()
	return nil
}

// lookupProduct returns nil values for unknown products or variants of another product.
func lookupProduct(ctx context.Context, tx *gorm.DB, productID uint, variantID *uint) (*models.Product, *models.ProductVariant, error) {
	var p models.Product
	err := tx.WithContext(ctx).First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load product: %w", err)
	}
	if variantID == nil {
		return &p, nil, nil
	}
	var v models.ProductVariant
	err = tx.WithContext(ctx).Where("id = ? AND product_id = ?", *variantID, p.ID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &p, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load variant: %w", err)
	}
	return &p, &v, nil
}

// lock loads the quote row FOR UPDATE, serializing mutations of one quote.
func (s *QuoteService) lock(ctx context.Context, tx *gorm.DB, id uint) (*models.Quote, error) {
	var q models.Quote
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error
	if err != nil {
		return nil, notFound(err, ErrQuoteNotFound, "quote")
	}
	return &q, nil
}

func (s *QuoteService) lockEditable(ctx context.Context, tx *gorm.DB, id uint) (*models.Quote, error) {
	q, err := s.lock(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := quoting.CheckEditable(q, s.opts.Now()); err != nil {
		return nil, err
	}
	return q, nil
}

// deselectSiblings keeps a newly selected item the only selected one of its group.
func deselectSiblings(ctx context.Context, tx *gorm.DB, item *models.QuoteItem) error {
	if !item.IsVariant || !item.IsSelected {
		return nil
	}
	return tx.WithContext(ctx).Model(&models.QuoteItem{}).
		Where("quote_id = ? AND variant_group = ? AND id <> ?", item.QuoteID, item.VariantGroup, item.ID).
		Update("is_selected", false).Error
}

// AddItem appends an item to an editable quote and recalculates it.
func (s *QuoteService) AddItem(ctx context.Context, quoteID uint, in ItemInput) (*models.QuoteItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var item models.QuoteItem
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		var maxPos int
		if err := tx.Model(&models.QuoteItem{}).Where("quote_id = ?", q.ID).
			Select("COALESCE(MAX(position), -1)").Scan(&maxPos).Error; err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		item.QuoteID = q.ID
		item.Position = maxPos + 1
		if err := fillItem(ctx, tx, &item, in); err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if err := deselectSiblings(ctx, tx, &item); err != nil {
			return err
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *QuoteService) loadItem(ctx context.Context, tx *gorm.DB, quoteID, itemID uint) (*models.QuoteItem, error) {
	var item models.QuoteItem
	err := tx.WithContext(ctx).Where("id = ? AND quote_id = ?", itemID, quoteID).First(&item).Error
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, "item")
	}
	return &item, nil
}

// UpdateItem replaces the fields of one item and recalculates the quote.
func (s *QuoteService) UpdateItem(ctx context.Context, quoteID, itemID uint, in ItemInput) (*models.QuoteItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var item *models.QuoteItem
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if item, err = s.loadItem(ctx, tx, quoteID, itemID); err != nil {
			return err
		}
		if err := fillItem(ctx, tx, item, in); err != nil {
			return err
		}
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		if err := deselectSiblings(ctx, tx, item); err != nil {
			return err
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem soft-deletes one item and recalculates the quote.
func (s *QuoteService) DeleteItem(ctx context.Context, quoteID, itemID uint) error {
	return transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		item, err := s.loadItem(ctx, tx, quoteID, itemID)
		if err != nil {
			return err
		}
		if err := tx.Delete(item).Error; err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
}

// SelectVariant makes itemID the selected option of its group with a single
// UPDATE, so no state with zero or two selected items is ever written.
func (s *QuoteService) SelectVariant(ctx context.Context, quoteID uint, groupKey string, itemID uint) (*models.Quote, error) {
	groupKey = strings.TrimSpace(groupKey)
	if groupKey == "" {
		return nil, invalidField("variant_group", "required")
	}
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		item, err := s.loadItem(ctx, tx, quoteID, itemID)
		if errors.Is(err, ErrItemNotFound) {
			return ErrInvalidVariantSelection
		}
		if err != nil {
			return err
		}
		if item.VariantGroup != groupKey {
			return ErrInvalidVariantSelection
		}
		err = tx.Model(&models.QuoteItem{}).
			Where("quote_id = ? AND variant_group = ?", quoteID, groupKey).
			Update("is_selected", gorm.Expr("id = ?", itemID)).Error
		if err != nil {
			return fmt.Errorf("select variant: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, quoteID)
}

// Recalculate recomputes and stores the totals of a quote.
func (s *QuoteService) Recalculate(ctx context.Context, id uint) (*models.Quote, error) {
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// recalculate prices the current items of q and stores the totals, inside tx.
func (s *QuoteService) recalculate(ctx context.Context, tx *gorm.DB, q *models.Quote) error {
	var items []models.QuoteItem
	if err := tx.WithContext(ctx).Where("quote_id = ?", q.ID).Order("position, id").Find(&items).Error; err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	_, totals := quoting.PricedItems(items, s.opts.Tax)
	q.ApplyTotals(totals)
	err := tx.WithContext(ctx).Model(&models.Quote{}).Where("id = ?", q.ID).Updates(map[string]any{
		"subtotal":   totals.Subtotal,
		"tax_amount": totals.TaxAmount,
		"total":      totals.Total,
	}).Error
	if err != nil {
		return fmt.Errorf("store totals: %w", err)
	}
	afterCommit(tx, metrics.Recalculations.WithLabelValues(metrics.KindMerchandise).Inc)
	return nil
}

// Transition moves the quote to status to, checked against its effective status.
func (s *QuoteService) Transition(ctx context.Context, actor quoting.Actor, id uint, to quoting.Status) (*models.Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := quoting.EffectiveStatus(q, s.opts.Now())
	if err := quoting.CheckTransition(from, to, actor); err != nil {
		return nil, err
	}
	if to == quoting.StatusSent {
		var email string
		if q.Client != nil {
			email = q.Client.Email
		}
		if err := (quoting.SendRequirements{ClientEmail: email}).Check(); err != nil {
			return nil, err
		}
	}
	if err := applyTransition(ctx, s.db, &models.Quote{}, q.ID, q.Status, to, s.opts.Now()); err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(metrics.KindMerchandise, string(to)).Inc()
	s.opts.Log.Info("quote status changed",
		zap.Uint("quote_id", q.ID), zap.String("from", string(from)), zap.String("to", string(to)), zap.Uint("actor", actor.UserID))
	return s.Get(ctx, id)
}

// applyTransition writes the new status only if the stored status is still
// expected, and stamps sent_at or responded_at.
func applyTransition(ctx context.Context, db *gorm.DB, model any, id uint, expected, to quoting.Status, now time.Time) error {
	updates := map[string]any{"status": to}
	switch to {
	case quoting.StatusSent:
		updates["sent_at"] = now
	case quoting.StatusApproved, quoting.StatusRejected:
		updates["responded_at"] = now
	}
	res := db.WithContext(ctx).Model(model).Where("id = ? AND status = ?", id, expected).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// RespondByToken records the client's answer to a sent quote.
func (s *QuoteService) RespondByToken(ctx context.Context, token string, approve bool) (*models.Quote, error) {
	q, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	to := quoting.StatusRejected
	if approve {
		to = quoting.StatusApproved
	}
	from := quoting.EffectiveStatus(q, s.opts.Now())
	if from != quoting.StatusSent {
		return nil, &quoting.TransitionError{From: from, To: to, Err: quoting.ErrTransitionNotAllowed}
	}
	if err := applyTransition(ctx, s.db, &models.Quote{}, q.ID, q.Status, to, s.opts.Now()); err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(metrics.KindMerchandise, string(to)).Inc()
	return s.Get(ctx, q.ID)
}

// GetByToken loads a quote by its public token.
func (s *QuoteService) GetByToken(ctx context.Context, token string) (*models.Quote, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	var q models.Quote
	if err := s.db.WithContext(ctx).Select("id").Where("public_token = ?", token).First(&q).Error; err != nil {
		return nil, notFound(err, ErrInvalidToken, "quote")
	}
	return s.Get(ctx, q.ID)
}

// Duplicate copies a quote and its items into a new quote owned by the actor,
// with fresh dates and the status given by quoting.CopyStatus.
func (s *QuoteService) Duplicate(ctx context.Context, actor quoting.Actor, id uint) (*models.Quote, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	issue := s.opts.today()
	dup := &models.Quote{
		Title:            src.Title,
		UserID:           actor.UserID,
		ClientID:         src.ClientID,
		IssueDate:        issue,
		ExpiryDate:       issue.AddDate(0, 0, s.opts.ValidityDays),
		FooterComments:   src.FooterComments,
		Status:           quoting.CopyStatus(quoting.EffectiveStatus(src, s.opts.Now())),
		Source:           models.SourceInternal,
		DuplicatedFromID: &src.ID,
	}
	err = transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(dup).Error; err != nil {
			return fmt.Errorf("create duplicate: %w", err)
		}
		if len(src.Items) > 0 {
			items := make([]models.QuoteItem, len(src.Items))
			for i, it := range src.Items {
				it.ID = 0
				it.CreatedAt, it.UpdatedAt = time.Time{}, time.Time{}
				it.QuoteID = dup.ID
				it.Quote = nil
				it.Normalize()
				items[i] = it
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("copy items: %w", err)
			}
		}
		return s.recalculate(ctx, tx, dup)
	})
	if err != nil {
		return nil, err
	}
	metrics.QuotesCreated.WithLabelValues(metrics.KindMerchandise, dup.Source).Inc()
	return s.Get(ctx, dup.ID)
}

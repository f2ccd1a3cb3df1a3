package services

import (
	"context"
	"errors"
	"fmt"
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

// PickingQuoteService manages picking quotes, their services and their boxes.
type PickingQuoteService struct {
	db   *gorm.DB
	opts Options
}

func NewPickingQuoteService(db *gorm.DB, opts Options) *PickingQuoteService {
	return &PickingQuoteService{db: db, opts: opts.withDefaults()}
}

// PickingInput is the editable header of a picking quote. A zero ValidUntil
// defaults to today plus the validity window.
type PickingInput struct {
	ClientID           uint
	TotalKits          int
	ComponentsPerKit   int
	ValidUntil         time.Time
	Notes              string
	PaymentConditionID *uint
}

func (s *PickingQuoteService) normalizeHeader(in *PickingInput) error {
	if in.ValidUntil.IsZero() {
		in.ValidUntil = s.opts.today().AddDate(0, 0, s.opts.ValidityDays)
	}
	in.ValidUntil = dateOnly(in.ValidUntil)
	v := validation.Violations{}
	validation.RequiredID("client_id", in.ClientID, v)
	validation.PositiveInt("total_kits", in.TotalKits, v)
	validation.PositiveInt("components_per_kit", in.ComponentsPerKit, v)
	if in.PaymentConditionID != nil && *in.PaymentConditionID == 0 {
		in.PaymentConditionID = nil
	}
	return invalid(v)
}

func requirePaymentCondition(ctx context.Context, tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.WithContext(ctx).Model(&models.PaymentCondition{}).
		Where("id = ? AND is_active = ?", *id, true).Count(&n).Error; err != nil {
		return fmt.Errorf("load payment condition: %w", err)
	}
	if n == 0 {
		return invalidField("payment_condition_id", "not_found")
	}
	return nil
}

// Create starts an unsent picking quote numbered PK-<year>-<seq>.
func (s *PickingQuoteService) Create(ctx context.Context, actor quoting.Actor, in PickingInput) (*models.PickingQuote, error) {
	if err := s.normalizeHeader(&in); err != nil {
		return nil, err
	}
	q := &models.PickingQuote{
		UserID:             actor.UserID,
		ClientID:           in.ClientID,
		TotalKits:          in.TotalKits,
		ComponentsPerKit:   in.ComponentsPerKit,
		ValidUntil:         in.ValidUntil,
		Notes:              in.Notes,
		PaymentConditionID: in.PaymentConditionID,
		Status:             quoting.StatusUnsent,
	}
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := requireClient(ctx, tx, in.ClientID); err != nil {
			return err
		}
		if err := requirePaymentCondition(ctx, tx, in.PaymentConditionID); err != nil {
			return err
		}
		return s.insert(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	metrics.QuotesCreated.WithLabelValues(metrics.KindPicking, models.SourceInternal).Inc()
	return s.Get(ctx, q.ID)
}

// insert numbers and stores a new picking quote, then recalculates it.
func (s *PickingQuoteService) insert(ctx context.Context, tx *gorm.DB, q *models.PickingQuote) error {
	year := s.opts.Now().Year()
	seq, err := NextSequence(ctx, tx, pickingSequenceName(year))
	if err != nil {
		return err
	}
	q.Number = models.PickingNumber(year, seq)
	if err := tx.Create(q).Error; err != nil {
		return fmt.Errorf("create picking quote: %w", err)
	}
	return s.recalculate(ctx, tx, q)
}

// UpdateHeader changes the header of an editable picking quote and recalculates it.
func (s *PickingQuoteService) UpdateHeader(ctx context.Context, id uint, in PickingInput) (*models.PickingQuote, error) {
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
		if err := requirePaymentCondition(ctx, tx, in.PaymentConditionID); err != nil {
			return err
		}
		q.ClientID = in.ClientID
		q.TotalKits = in.TotalKits
		q.ComponentsPerKit = in.ComponentsPerKit
		q.ValidUntil = in.ValidUntil
		q.Notes = in.Notes
		q.PaymentConditionID = in.PaymentConditionID
		err = tx.Model(q).Select("client_id", "total_kits", "components_per_kit", "valid_until", "notes", "payment_condition_id").
			Updates(q).Error
		if err != nil {
			return fmt.Errorf("update picking quote: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get loads a picking quote with client, vendor, payment condition, services and boxes.
func (s *PickingQuoteService) Get(ctx context.Context, id uint) (*models.PickingQuote, error) {
	var q models.PickingQuote
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("User").
		Preload("PaymentCondition", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Boxes", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err, ErrQuoteNotFound, "picking quote")
	}
	return &q, nil
}

// List returns picking quote headers, newest first.
func (s *PickingQuoteService) List(ctx context.Context, f ListFilter) ([]models.PickingQuote, error) {
	var quotes []models.PickingQuote
	err := f.apply(s.db.WithContext(ctx).Preload("Client"), "valid_until", s.opts.today()).Order("created_at DESC, id DESC").Find(&quotes).Error
	return quotes, err
}

func (s *PickingQuoteService) lock(ctx context.Context, tx *gorm.DB, id uint) (*models.PickingQuote, error) {
	var q models.PickingQuote
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error
	if err != nil {
		return nil, notFound(err, ErrQuoteNotFound, "picking quote")
	}
	return &q, nil
}

func (s *PickingQuoteService) lockEditable(ctx context.Context, tx *gorm.DB, id uint) (*models.PickingQuote, error) {
	q, err := s.lock(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := quoting.CheckEditable(q, s.opts.Now()); err != nil {
		return nil, err
	}
	return q, nil
}

// ServiceInput describes a service line. A nil UnitCost takes the cost scale
// value for the quote's kit count, zero when no scale matches.
type ServiceInput struct {
	Category    quoting.ServiceCategory `json:"category"`
	Description string                  `json:"description"`
	UnitCost    *decimal.Decimal        `json:"unit_cost,omitempty"`
	Quantity    int                     `json:"quantity"`
}

func (in ServiceInput) validate() error {
	v := validation.Violations{}
	if !in.Category.Valid() {
		v.Add("category", "out_of_range")
	}
	validation.PositiveInt("quantity", in.Quantity, v)
	validation.MaxLen("description", in.Description, 500, v)
	if in.UnitCost != nil {
		validation.NonNegativeDecimal("unit_cost", *in.UnitCost, v)
	}
	return invalid(v)
}

// scaleCost resolves the default unit cost of a category for totalKits.
func scaleCost(ctx context.Context, tx *gorm.DB, cat quoting.ServiceCategory, totalKits int) (decimal.Decimal, error) {
	var scales []models.CostScale
	if err := tx.WithContext(ctx).Order("quantity_from, id").Find(&scales).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load cost scales: %w", err)
	}
	scale, ok := quoting.MatchRange(scales, totalKits)
	if !ok {
		return decimal.Zero, nil
	}
	return scale.CostFor(cat), nil
}

func (s *PickingQuoteService) fillService(ctx context.Context, tx *gorm.DB, q *models.PickingQuote, svc *models.PickingService, in ServiceInput) error {
	svc.Category = in.Category
	svc.Description = strings.TrimSpace(in.Description)
	svc.Quantity = in.Quantity
	if in.UnitCost != nil {
		svc.UnitCost = *in.UnitCost
	} else {
		cost, err := scaleCost(ctx, tx, in.Category, q.TotalKits)
		if err != nil {
			return err
		}
		svc.UnitCost = cost
	}
	svc.Normalize()
	return nil
}

// AddService adds a service line and recalculates the quote.
func (s *PickingQuoteService) AddService(ctx context.Context, quoteID uint, in ServiceInput) (*models.PickingService, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	svc := &models.PickingService{PickingQuoteID: quoteID}
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if err := s.fillService(ctx, tx, q, svc, in); err != nil {
			return err
		}
		if err := tx.Create(svc).Error; err != nil {
			return fmt.Errorf("create service: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func loadService(ctx context.Context, tx *gorm.DB, quoteID, id uint) (*models.PickingService, error) {
	var svc models.PickingService
	if err := tx.WithContext(ctx).Where("id = ? AND picking_quote_id = ?", id, quoteID).First(&svc).Error; err != nil {
		return nil, notFound(err, ErrItemNotFound, "service")
	}
	return &svc, nil
}

// UpdateService replaces a service line and recalculates the quote.
func (s *PickingQuoteService) UpdateService(ctx context.Context, quoteID, serviceID uint, in ServiceInput) (*models.PickingService, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var svc *models.PickingService
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if svc, err = loadService(ctx, tx, quoteID, serviceID); err != nil {
			return err
		}
		if err := s.fillService(ctx, tx, q, svc, in); err != nil {
			return err
		}
		if err := tx.Save(svc).Error; err != nil {
			return fmt.Errorf("save service: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService removes a service line and recalculates the quote.
func (s *PickingQuoteService) DeleteService(ctx context.Context, quoteID, serviceID uint) error {
	return transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		svc, err := loadService(ctx, tx, quoteID, serviceID)
		if err != nil {
			return err
		}
		if err := tx.Delete(svc).Error; err != nil {
			return fmt.Errorf("delete service: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
}

// BoxInput picks a catalog box and a quantity.
type BoxInput struct {
	PackagingBoxID uint `json:"packaging_box_id"`
	Quantity       int  `json:"quantity"`
}

func (in BoxInput) validate() error {
	v := validation.Violations{}
	validation.RequiredID("packaging_box_id", in.PackagingBoxID, v)
	validation.PositiveInt("quantity", in.Quantity, v)
	return invalid(v)
}

func fillBox(ctx context.Context, tx *gorm.DB, line *models.PickingBox, in BoxInput) error {
	if line.PackagingBoxID != in.PackagingBoxID || line.ID == 0 {
		var box models.PackagingBox
		err := tx.WithContext(ctx).Where("id = ? AND is_active = ?", in.PackagingBoxID, true).First(&box).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidField("packaging_box_id", "not_found")
		}
		if err != nil {
			return fmt.Errorf("load box: %w", err)
		}
		line.SnapshotFrom(&box)
	}
	line.Quantity = in.Quantity
	line.Normalize()
	return nil
}

// AddBox adds a box line with a snapshot of the catalog box and recalculates the quote.
func (s *PickingQuoteService) AddBox(ctx context.Context, quoteID uint, in BoxInput) (*models.PickingBox, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	line := &models.PickingBox{PickingQuoteID: quoteID}
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if err := fillBox(ctx, tx, line, in); err != nil {
			return err
		}
		if err := tx.Create(line).Error; err != nil {
			return fmt.Errorf("create box: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func loadBox(ctx context.Context, tx *gorm.DB, quoteID, id uint) (*models.PickingBox, error) {
	var line models.PickingBox
	if err := tx.WithContext(ctx).Where("id = ? AND picking_quote_id = ?", id, quoteID).First(&line).Error; err != nil {
		return nil, notFound(err, ErrItemNotFound, "box")
	}
	return &line, nil
}

// UpdateBox changes a box line. The snapshot is only refreshed when the catalog box changes.
func (s *PickingQuoteService) UpdateBox(ctx context.Context, quoteID, boxID uint, in BoxInput) (*models.PickingBox, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var line *models.PickingBox
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if line, err = loadBox(ctx, tx, quoteID, boxID); err != nil {
			return err
		}
		if err := fillBox(ctx, tx, line, in); err != nil {
			return err
		}
		if err := tx.Save(line).Error; err != nil {
			return fmt.Errorf("save box: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteBox removes a box line and recalculates the quote.
func (s *PickingQuoteService) DeleteBox(ctx context.Context, quoteID, boxID uint) error {
	return transaction(ctx, s.db, func(tx *gorm.DB) error {
		q, err := s.lockEditable(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		line, err := loadBox(ctx, tx, quoteID, boxID)
		if err != nil {
			return err
		}
		if err := tx.Delete(line).Error; err != nil {
			return fmt.Errorf("delete box: %w", err)
		}
		return s.recalculate(ctx, tx, q)
	})
}

// Recalculate reruns the cascade of a picking quote.
func (s *PickingQuoteService) Recalculate(ctx context.Context, id uint) (*models.PickingQuote, error) {
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

// cascadeInput gathers the lines and resolved percentages of q, inside tx.
func (s *PickingQuoteService) cascadeInput(ctx context.Context, tx *gorm.DB, q *models.PickingQuote) (quoting.PickingInput, error) {
	db := tx.WithContext(ctx)
	in := quoting.PickingInput{TotalKits: q.TotalKits, Tax: s.opts.Tax}

	var services []models.PickingService
	if err := db.Where("picking_quote_id = ?", q.ID).Find(&services).Error; err != nil {
		return in, fmt.Errorf("load services: %w", err)
	}
	for _, svc := range services {
		in.Services = append(in.Services, svc.Subtotal)
	}
	var boxes []models.PickingBox
	if err := db.Where("picking_quote_id = ?", q.ID).Find(&boxes).Error; err != nil {
		return in, fmt.Errorf("load boxes: %w", err)
	}
	for _, b := range boxes {
		in.Boxes = append(in.Boxes, b.Subtotal)
	}

	var rules []models.ComponentIncrementRule
	if err := db.Order("quantity_from, id").Find(&rules).Error; err != nil {
		return in, fmt.Errorf("load increment rules: %w", err)
	}
	if rule, ok := quoting.MatchRange(rules, q.ComponentsPerKit); ok {
		in.ComponentIncrementPct = rule.Percentage
	}

	if q.PaymentConditionID != nil {
		var pc models.PaymentCondition
		err := db.Unscoped().First(&pc, *q.PaymentConditionID).Error
		switch {
		case err == nil:
			in.PaymentConditionPct = pc.Percentage
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return in, fmt.Errorf("load payment condition: %w", err)
		}
	}
	return in, nil
}

// recalculate runs the cascade and stores every stage on the header, inside tx.
func (s *PickingQuoteService) recalculate(ctx context.Context, tx *gorm.DB, q *models.PickingQuote) error {
	in, err := s.cascadeInput(ctx, tx, q)
	if err != nil {
		return err
	}
	b := quoting.PickingCascade(in)
	q.ApplyBreakdown(b)
	err = tx.WithContext(ctx).Model(&models.PickingQuote{}).Where("id = ?", q.ID).
		Updates(models.BreakdownColumns(b)).Error
	if err != nil {
		return fmt.Errorf("store cascade: %w", err)
	}
	afterCommit(tx, metrics.Recalculations.WithLabelValues(metrics.KindPicking).Inc)
	return nil
}

// Transition moves the picking quote to status to. Sending needs a client
// contact and at least one assembly service.
func (s *PickingQuoteService) Transition(ctx context.Context, actor quoting.Actor, id uint, to quoting.Status) (*models.PickingQuote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := quoting.EffectiveStatus(q, s.opts.Now())
	if err := quoting.CheckTransition(from, to, actor); err != nil {
		return nil, err
	}
	if to == quoting.StatusSent {
		req := quoting.SendRequirements{RequireAssembly: true, HasAssembly: q.HasAssembly()}
		if q.Client != nil {
			req.ClientEmail = q.Client.Email
		}
		if err := req.Check(); err != nil {
			return nil, err
		}
	}
	if err := applyTransition(ctx, s.db, &models.PickingQuote{}, q.ID, q.Status, to, s.opts.Now()); err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(metrics.KindPicking, string(to)).Inc()
	s.opts.Log.Info("picking quote status changed",
		zap.String("number", q.Number), zap.String("from", string(from)), zap.String("to", string(to)), zap.Uint("actor", actor.UserID))
	return s.Get(ctx, id)
}

// GetByToken loads a picking quote by its public token.
func (s *PickingQuoteService) GetByToken(ctx context.Context, token string) (*models.PickingQuote, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	var q models.PickingQuote
	if err := s.db.WithContext(ctx).Select("id").Where("public_token = ?", token).First(&q).Error; err != nil {
		return nil, notFound(err, ErrInvalidToken, "picking quote")
	}
	return s.Get(ctx, q.ID)
}

// RespondByToken records the client's answer to a sent picking quote.
func (s *PickingQuoteService) RespondByToken(ctx context.Context, token string, approve bool) (*models.PickingQuote, error) {
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
	if err := applyTransition(ctx, s.db, &models.PickingQuote{}, q.ID, q.Status, to, s.opts.Now()); err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(metrics.KindPicking, string(to)).Inc()
	return s.Get(ctx, q.ID)
}

// Duplicate copies a picking quote with its services and boxes under a new number.
func (s *PickingQuoteService) Duplicate(ctx context.Context, actor quoting.Actor, id uint) (*models.PickingQuote, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := &models.PickingQuote{
		UserID:             actor.UserID,
		ClientID:           src.ClientID,
		TotalKits:          src.TotalKits,
		ComponentsPerKit:   src.ComponentsPerKit,
		ValidUntil:         s.opts.today().AddDate(0, 0, s.opts.ValidityDays),
		Notes:              src.Notes,
		PaymentConditionID: src.PaymentConditionID,
		Status:             quoting.CopyStatus(quoting.EffectiveStatus(src, s.opts.Now())),
		DuplicatedFromID:   &src.ID,
	}
	err = transaction(ctx, s.db, func(tx *gorm.DB) error {
		year := s.opts.Now().Year()
		seq, err := NextSequence(ctx, tx, pickingSequenceName(year))
		if err != nil {
			return err
		}
		dup.Number = models.PickingNumber(year, seq)
		if err := tx.Create(dup).Error; err != nil {
			return fmt.Errorf("create duplicate: %w", err)
		}
		for _, svc := range src.Services {
			copySvc := models.PickingService{
				PickingQuoteID: dup.ID,
				Category:       svc.Category,
				Description:    svc.Description,
				UnitCost:       svc.UnitCost,
				Quantity:       svc.Quantity,
			}
			copySvc.Normalize()
			if err := tx.Create(&copySvc).Error; err != nil {
				return fmt.Errorf("copy service: %w", err)
			}
		}
		for _, b := range src.Boxes {
			copyBox := b
			copyBox.ID = 0
			copyBox.CreatedAt, copyBox.UpdatedAt = time.Time{}, time.Time{}
			copyBox.PickingQuoteID = dup.ID
			copyBox.PackagingBox = nil
			copyBox.Normalize()
			if err := tx.Create(&copyBox).Error; err != nil {
				return fmt.Errorf("copy box: %w", err)
			}
		}
		return s.recalculate(ctx, tx, dup)
	})
	if err != nil {
		return nil, err
	}
	metrics.QuotesCreated.WithLabelValues(metrics.KindPicking, models.SourceInternal).Inc()
	return s.Get(ctx, dup.ID)
}

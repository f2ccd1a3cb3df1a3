package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReferenceService maintains the lookup tables the picking cascade reads.
type ReferenceService struct {
	db *gorm.DB
}

func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

func activeOr(p *bool) bool {
	return p == nil || *p
}

func listRows[T any](ctx context.Context, db *gorm.DB, activeOnly bool, order string) ([]T, error) {
	var rows []T
	q := db.WithContext(ctx).Order(order)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func getRow[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, ErrNotFound, "reference row")
	}
	return &row, nil
}

// deleteRow soft-deletes a row unless usedBy finds a live reference to it.
func deleteRow[T any](ctx context.Context, db *gorm.DB, id uint, usedBy func(tx *gorm.DB) (int64, error)) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := getRow[T](ctx, tx, id)
		if err != nil {
			return err
		}
		if usedBy != nil {
			n, err := usedBy(tx)
			if err != nil {
				return fmt.Errorf("check references: %w", err)
			}
			if n > 0 {
				return ErrReferenceInUse
			}
		}
		return tx.Delete(row).Error
	})
}

// PaymentConditionInput creates or replaces a payment condition.
type PaymentConditionInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Percentage  decimal.Decimal `json:"percentage"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

func (in *PaymentConditionInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 100, v)
	validation.Percentage("percentage", in.Percentage, v)
	return invalid(v)
}

func (in PaymentConditionInput) apply(pc *models.PaymentCondition) {
	pc.Name = in.Name
	pc.Description = in.Description
	pc.Percentage = in.Percentage
	pc.IsActive = activeOr(in.IsActive)
}

func (s *ReferenceService) PaymentConditions(ctx context.Context, activeOnly bool) ([]models.PaymentCondition, error) {
	return listRows[models.PaymentCondition](ctx, s.db, activeOnly, "name, id")
}

func (s *ReferenceService) CreatePaymentCondition(ctx context.Context, in PaymentConditionInput) (*models.PaymentCondition, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var pc models.PaymentCondition
	in.apply(&pc)
	if err := s.db.WithContext(ctx).Create(&pc).Error; err != nil {
		return nil, err
	}
	return &pc, nil
}

func (s *ReferenceService) UpdatePaymentCondition(ctx context.Context, id uint, in PaymentConditionInput) (*models.PaymentCondition, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	pc, err := getRow[models.PaymentCondition](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	in.apply(pc)
	if err := s.db.WithContext(ctx).Save(pc).Error; err != nil {
		return nil, err
	}
	return pc, nil
}

// DeletePaymentCondition fails with ErrReferenceInUse while a picking quote uses it.
func (s *ReferenceService) DeletePaymentCondition(ctx context.Context, id uint) error {
	return deleteRow[models.PaymentCondition](ctx, s.db, id, func(tx *gorm.DB) (int64, error) {
		var n int64
		err := tx.Model(&models.PickingQuote{}).Where("payment_condition_id = ?", id).Count(&n).Error
		return n, err
	})
}

// PackagingBoxInput creates or replaces a catalog packaging box.
type PackagingBoxInput struct {
	Name     string          `json:"name"`
	LengthCM decimal.Decimal `json:"length_cm"`
	WidthCM  decimal.Decimal `json:"width_cm"`
	HeightCM decimal.Decimal `json:"height_cm"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	IsActive *bool           `json:"is_active,omitempty"`
}

func (in *PackagingBoxInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.NonNegativeDecimal("length_cm", in.LengthCM, v)
	validation.NonNegativeDecimal("width_cm", in.WidthCM, v)
	validation.NonNegativeDecimal("height_cm", in.HeightCM, v)
	validation.NonNegativeDecimal("unit_cost", in.UnitCost, v)
	return invalid(v)
}

func (in PackagingBoxInput) apply(b *models.PackagingBox) {
	b.Name = in.Name
	b.LengthCM = in.LengthCM
	b.WidthCM = in.WidthCM
	b.HeightCM = in.HeightCM
	b.UnitCost = in.UnitCost
	b.IsActive = activeOr(in.IsActive)
}

func (s *ReferenceService) Boxes(ctx context.Context, activeOnly bool) ([]models.PackagingBox, error) {
	return listRows[models.PackagingBox](ctx, s.db, activeOnly, "name, id")
}

func (s *ReferenceService) CreateBox(ctx context.Context, in PackagingBoxInput) (*models.PackagingBox, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var b models.PackagingBox
	in.apply(&b)
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBox changes the catalog row only; box lines keep their snapshot.
func (s *ReferenceService) UpdateBox(ctx context.Context, id uint, in PackagingBoxInput) (*models.PackagingBox, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := getRow[models.PackagingBox](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	in.apply(b)
	if err := s.db.WithContext(ctx).Save(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBox fails with ErrReferenceInUse while a picking quote has a line with it.
func (s *ReferenceService) DeleteBox(ctx context.Context, id uint) error {
	return deleteRow[models.PackagingBox](ctx, s.db, id, func(tx *gorm.DB) (int64, error) {
		var n int64
		err := tx.Model(&models.PickingBox{}).Where("packaging_box_id = ?", id).Count(&n).Error
		return n, err
	})
}

// RangeInput is the quantity range shared by increment rules and cost scales.
type RangeInput struct {
	QuantityFrom int  `json:"from"`
	QuantityTo   *int `json:"to,omitempty"`
}

func (in RangeInput) check(v validation.Violations) {
	validation.IntRange("quantity_to", in.QuantityFrom, in.QuantityTo, v)
	if !quoting.ValidRange(in.QuantityFrom, in.QuantityTo) {
		v.Add("quantity_to", "invalid_range")
	}
}

// IncrementRuleInput creates or replaces a component increment rule.
type IncrementRuleInput struct {
	RangeInput
	Percentage decimal.Decimal `json:"percentage"`
	IsActive   *bool           `json:"is_active,omitempty"`
}

func (in IncrementRuleInput) validate() error {
	v := validation.Violations{}
	in.check(v)
	validation.Percentage("percentage", in.Percentage, v)
	return invalid(v)
}

func (in IncrementRuleInput) apply(r *models.ComponentIncrementRule) {
	r.QuantityFrom = in.QuantityFrom
	r.QuantityTo = in.QuantityTo
	r.Percentage = in.Percentage
	r.IsActive = activeOr(in.IsActive)
}

// IncrementRules are returned in lookup order.
func (s *ReferenceService) IncrementRules(ctx context.Context, activeOnly bool) ([]models.ComponentIncrementRule, error) {
	return listRows[models.ComponentIncrementRule](ctx, s.db, activeOnly, "quantity_from, id")
}

func (s *ReferenceService) CreateIncrementRule(ctx context.Context, in IncrementRuleInput) (*models.ComponentIncrementRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var r models.ComponentIncrementRule
	in.apply(&r)
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReferenceService) UpdateIncrementRule(ctx context.Context, id uint, in IncrementRuleInput) (*models.ComponentIncrementRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	r, err := getRow[models.ComponentIncrementRule](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	in.apply(r)
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReferenceService) DeleteIncrementRule(ctx context.Context, id uint) error {
	return deleteRow[models.ComponentIncrementRule](ctx, s.db, id, nil)
}

// CostScaleInput creates or replaces a cost scale. Costs are keyed by service category.
type CostScaleInput struct {
	RangeInput
	Costs    map[quoting.ServiceCategory]decimal.Decimal `json:"costs"`
	IsActive *bool                                       `json:"is_active,omitempty"`
}

func (in CostScaleInput) validate() error {
	v := validation.Violations{}
	in.check(v)
	for cat, cost := range in.Costs {
		if !cat.Valid() {
			v.Add("costs."+string(cat), "out_of_range")
			continue
		}
		validation.NonNegativeDecimal("costs."+string(cat), cost, v)
	}
	return invalid(v)
}

func (in CostScaleInput) apply(c *models.CostScale) {
	c.QuantityFrom = in.QuantityFrom
	c.QuantityTo = in.QuantityTo
	c.IsActive = activeOr(in.IsActive)
	cost := func(cat quoting.ServiceCategory) decimal.Decimal { return in.Costs[cat] }
	c.AssemblyCost = cost(quoting.CategoryAssembly)
	c.PalletizingCost = cost(quoting.CategoryPalletizing)
	c.LabelingCost = cost(quoting.CategoryLabeling)
	c.DomeStickingCost = cost(quoting.CategoryDomeSticking)
	c.AdditionalAssemblyCost = cost(quoting.CategoryAdditionalAssembly)
	c.QualityControlCost = cost(quoting.CategoryQualityControl)
	c.ShavingsCost = cost(quoting.CategoryShavings)
	c.BagCost = cost(quoting.CategoryBag)
	c.BubbleWrapCost = cost(quoting.CategoryBubbleWrap)
}

// CostScales are returned in lookup order.
func (s *ReferenceService) CostScales(ctx context.Context, activeOnly bool) ([]models.CostScale, error) {
	return listRows[models.CostScale](ctx, s.db, activeOnly, "quantity_from, id")
}

func (s *ReferenceService) CreateCostScale(ctx context.Context, in CostScaleInput) (*models.CostScale, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var c models.CostScale
	in.apply(&c)
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ReferenceService) UpdateCostScale(ctx context.Context, id uint, in CostScaleInput) (*models.CostScale, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := getRow[models.CostScale](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ReferenceService) DeleteCostScale(ctx context.Context, id uint) error {
	return deleteRow[models.CostScale](ctx, s.db, id, nil)
}

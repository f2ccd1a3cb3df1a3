package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/validation"
	"gorm.io/gorm"
)

// ClientInput creates or replaces a client.
type ClientInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	TaxID      string `json:"tax_id"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (in ClientInput) apply(c *models.Client) error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	if strings.TrimSpace(in.Email) != "" {
		validation.Email("email", in.Email, v)
	}
	validation.MaxLen("tax_id", in.TaxID, 20, v)
	if err := invalid(v); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Email = models.NormalizeEmail(in.Email)
	c.Phone = in.Phone
	c.Company = in.Company
	c.TaxID = in.TaxID
	c.Address = in.Address
	c.City = in.City
	c.PostalCode = in.PostalCode
	c.Country = in.Country
	return nil
}

// ClientService manages the shared client book.
type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// List returns clients by name, optionally filtered by a name, company or email fragment.
func (s *ClientService) List(ctx context.Context, query string, limit, offset int) ([]models.Client, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Client{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR email LIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var clients []models.Client
	err := q.Order("name").Order("id").Limit(limit).Offset(offset).Find(&clients).Error
	return clients, total, err
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, ErrNotFound, "client")
	}
	return &c, nil
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	var c models.Client
	if err := in.apply(&c); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, in ClientInput) (*models.Client, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes a client that no quote of either kind references.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	return deleteRow[models.Client](ctx, s.db, id, func(tx *gorm.DB) (int64, error) {
		var merch, picking int64
		if err := tx.Model(&models.Quote{}).Where("client_id = ?", id).Count(&merch).Error; err != nil {
			return 0, err
		}
		if err := tx.Model(&models.PickingQuote{}).Where("client_id = ?", id).Count(&picking).Error; err != nil {
			return 0, err
		}
		return merch + picking, nil
	})
}

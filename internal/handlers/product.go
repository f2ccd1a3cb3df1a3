package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/services"
	"gorm.io/gorm"
)

// ProductHandler exposes the read-only product catalog used to build quote items.
// The catalog itself is maintained by an external sync.
type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 20
	offset := (page - 1) * limit

	var products []models.Product
	var total int64

	db := h.db.WithContext(r.Context()).Model(&models.Product{}).Where("is_active = ?", true)
	if query != "" {
		like := "%" + query + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	db = db.Session(&gorm.Session{})

	if err := db.Count(&total).Error; err != nil {
		writeError(w, r, err)
		return
	}
	err := db.Preload("Variants").Order("name").Limit(limit).Offset(offset).Find(&products).Error
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"products": products,
		"query":    query,
		"page":     page,
		"total":    total,
		"limit":    limit,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var product models.Product
	if err := h.db.WithContext(r.Context()).Preload("Variants").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrNotFound
		}
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

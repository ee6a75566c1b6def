package pricing

import (
	"context"

	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository exposes the tax-rate lookups the pricing service needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCountryByName(ctx context.Context, name string) (*models.Country, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCountryByName(ctx context.Context, name string) (*models.Country, error) {
	var country models.Country
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&country).Error
	if err != nil {
		return nil, err
	}
	return &country, nil
}

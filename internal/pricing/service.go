package pricing

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

// Service resolves tax rates for checkout flows.
type Service interface {
	RateForCountry(ctx context.Context, name string) (int, error)
}

type service struct {
	repo Repository
}

// NewService builds a pricing service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

// RateForCountry returns the integer percentage tax rate for a country.
// Unknown or inactive countries tax at zero.
func (s *service) RateForCountry(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	country, err := s.repo.FindCountryByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load country tax rate")
	}
	return country.TaxRate, nil
}

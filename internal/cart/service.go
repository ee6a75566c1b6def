package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/internal/pricing"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

type taxResolver interface {
	RateForCountry(ctx context.Context, name string) (int, error)
}

// Service exposes cart operations for a browser session.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*models.CartItem, error)
	List(ctx context.Context, sessionID string) (*ListResult, error)
	Delete(ctx context.Context, sessionID string, itemID uuid.UUID) error
	Clear(ctx context.Context, sessionID string) error
	Stats(ctx context.Context, sessionID string) (*Stats, error)
}

type service struct {
	repo           Repository
	tax            taxResolver
	defaultCountry string
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tax taxResolver, defaultCountry string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tax == nil {
		return nil, fmt.Errorf("tax resolver required")
	}
	if defaultCountry == "" {
		return nil, fmt.Errorf("default country required")
	}
	return &service{repo: repo, tax: tax, defaultCountry: defaultCountry}, nil
}

// UpsertInput captures the payload to add or refresh a course in a cart.
type UpsertInput struct {
	SessionID string
	CourseID  uuid.UUID
	UserID    *uuid.UUID
	Country   string
}

// Stats summarizes a cart session for badge counters and checkout review.
type Stats struct {
	Count    int             `json:"count"`
	SubTotal decimal.Decimal `json:"sub_total"`
	TaxFee   decimal.Decimal `json:"tax_fee"`
	Total    decimal.Decimal `json:"total"`
}

// ListResult carries the cart lines plus their aggregate.
type ListResult struct {
	Items []models.CartItem `json:"items"`
	Stats Stats             `json:"stats"`
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.CartItem, error) {
	if input.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}
	if input.CourseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course id required")
	}

	course, err := s.repo.FindCourse(ctx, input.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if !course.IsPublished() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course is not available for purchase")
	}

	country := input.Country
	if country == "" {
		country = s.defaultCountry
	}
	rate, err := s.tax.RateForCountry(ctx, country)
	if err != nil {
		return nil, err
	}
	quote := pricing.QuoteFor(course.Price, rate)

	item := &models.CartItem{
		CartSessionID: input.SessionID,
		CourseID:      course.ID,
		UserID:        input.UserID,
		Country:       country,
		Price:         pricing.Round2(quote.Price),
		TaxFee:        pricing.Round2(quote.TaxFee),
		Total:         pricing.Round2(quote.Total),
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert cart item")
	}
	item.Course = course
	return item, nil
}

func (s *service) List(ctx context.Context, sessionID string) (*ListResult, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}

	items, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	return &ListResult{Items: items, Stats: statsFor(items)}, nil
}

func (s *service) Delete(ctx context.Context, sessionID string, itemID uuid.UUID) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}

	affected, err := s.repo.Delete(ctx, sessionID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}
	if _, err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) Stats(ctx context.Context, sessionID string) (*Stats, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}

	items, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	stats := statsFor(items)
	return &stats, nil
}

func statsFor(items []models.CartItem) Stats {
	stats := Stats{
		Count:    len(items),
		SubTotal: decimal.Zero,
		TaxFee:   decimal.Zero,
		Total:    decimal.Zero,
	}
	for _, item := range items {
		stats.SubTotal = stats.SubTotal.Add(item.Price)
		stats.TaxFee = stats.TaxFee.Add(item.TaxFee)
		stats.Total = stats.Total.Add(item.Total)
	}
	return stats
}

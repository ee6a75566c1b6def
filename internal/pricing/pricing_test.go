package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

func TestQuoteForEightPercent(t *testing.T) {
	price := decimal.RequireFromString("100.00")
	quote := QuoteFor(price, 8)

	if got := Round2(quote.TaxFee).String(); got != "8.00" {
		t.Fatalf("expected tax 8.00, got %s", got)
	}
	if got := Round2(quote.Total).String(); got != "108.00" {
		t.Fatalf("expected total 108.00, got %s", got)
	}
}

func TestQuoteForZeroRate(t *testing.T) {
	price := decimal.RequireFromString("49.99")
	quote := QuoteFor(price, 0)

	if !quote.TaxFee.IsZero() {
		t.Fatalf("expected zero tax, got %s", quote.TaxFee)
	}
	if !quote.Total.Equal(price) {
		t.Fatalf("expected total to equal price, got %s", quote.Total)
	}
}

func TestDiscountAmountTenPercent(t *testing.T) {
	lineTotal := decimal.RequireFromString("108.00")
	discount := DiscountAmount(lineTotal, 10)

	if got := Round2(discount).String(); got != "10.80" {
		t.Fatalf("expected discount 10.80, got %s", got)
	}
	if got := Round2(lineTotal.Sub(discount)).String(); got != "97.20" {
		t.Fatalf("expected discounted total 97.20, got %s", got)
	}
}

func TestRecomputeOrderTotalsInvariant(t *testing.T) {
	items := []models.OrderItem{
		{
			Price:        decimal.RequireFromString("100.00"),
			TaxFee:       decimal.RequireFromString("8.00"),
			InitialTotal: decimal.RequireFromString("108.00"),
			Saved:        decimal.RequireFromString("10.80"),
			Total:        decimal.RequireFromString("97.20"),
		},
		{
			Price:        decimal.RequireFromString("50.00"),
			TaxFee:       decimal.RequireFromString("4.00"),
			InitialTotal: decimal.RequireFromString("54.00"),
			Saved:        decimal.Zero,
			Total:        decimal.RequireFromString("54.00"),
		},
	}

	totals := RecomputeOrderTotals(items)

	if got := totals.SubTotal.String(); got != "150.00" {
		t.Fatalf("unexpected sub total %s", got)
	}
	if got := totals.Saved.String(); got != "10.80" {
		t.Fatalf("unexpected saved %s", got)
	}

	want := totals.SubTotal.Add(totals.TaxFee).Sub(totals.Saved)
	if !totals.Total.Equal(want) {
		t.Fatalf("total invariant broken: total=%s want=%s", totals.Total, want)
	}
	if got := Round2(totals.Total).String(); got != "151.20" {
		t.Fatalf("unexpected total %s", got)
	}
}

type fakeCountryRepo struct {
	countries map[string]*models.Country
}

func (f *fakeCountryRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeCountryRepo) FindCountryByName(ctx context.Context, name string) (*models.Country, error) {
	if c, ok := f.countries[name]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestRateForCountry(t *testing.T) {
	svc, err := NewService(&fakeCountryRepo{countries: map[string]*models.Country{
		"India": {Name: "India", TaxRate: 18, IsActive: true},
	}})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	rate, err := svc.RateForCountry(context.Background(), "India")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 18 {
		t.Fatalf("expected 18, got %d", rate)
	}

	rate, err = svc.RateForCountry(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0 {
		t.Fatalf("unknown country should tax at zero, got %d", rate)
	}

	rate, err = svc.RateForCountry(context.Background(), "")
	if err != nil || rate != 0 {
		t.Fatalf("empty country should tax at zero, got %d err=%v", rate, err)
	}
}

package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"Lavka/internal/model"
	"Lavka/pkg/errors"
	"Lavka/pkg/logger"
)

type fakePromoSource struct {
	promos []*model.PromoCode
}

func (f *fakePromoSource) ListEligible(_ context.Context, productID int64, at time.Time) ([]*model.PromoCode, error) {
	var out []*model.PromoCode
	for _, p := range f.promos {
		if p.ProductID != productID || !p.Active {
			continue
		}
		if at.Before(p.StartsAt) || !at.Before(p.EndsAt) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePromoSource) GetByID(_ context.Context, id int64) (*model.PromoCode, error) {
	for _, p := range f.promos {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.CodeNotFound
}

type fakeProductSource struct {
	products map[int64]*model.Product
}

func (f *fakeProductSource) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, errors.ProductNotFound
}

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newPromo(id, productID int64, code, percent string, startsAt, endsAt time.Time) *model.PromoCode {
	p := &model.PromoCode{
		Code:            code,
		ProductID:       productID,
		DiscountPercent: dec(percent),
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		Active:          true,
	}
	p.ID = id
	return p
}

func newEngine(products *fakeProductSource, promos *fakePromoSource) *Engine {
	return New(promos, products, 2)
}

func singleProduct(id int64, basePrice string) *fakeProductSource {
	p := &model.Product{Name: "tea", BasePrice: dec(basePrice), Available: true}
	p.ID = id
	return &fakeProductSource{products: map[int64]*model.Product{id: p}}
}

func TestResolvePriceNoEligiblePromo(t *testing.T) {
	e := newEngine(singleProduct(1, "100.00"), &fakePromoSource{})

	quote, err := e.ResolvePrice(context.Background(), 1, time.Now())
	if err != nil {
		t.Fatalf("ResolvePrice: %v", err)
	}
	if quote.Applied != nil {
		t.Fatalf("expected no promo applied, got %q", quote.Applied.Code)
	}
	if !quote.Effective.Equal(dec("100.00")) {
		t.Fatalf("expected base price 100.00, got %s", quote.Effective)
	}
}

func TestResolvePriceWindowBounds(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
	}
	promos := &fakePromoSource{promos: []*model.PromoCode{
		newPromo(1, 1, "SUMMER10", "10", day(1), day(11)),
	}}
	e := newEngine(singleProduct(1, "100.00"), promos)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before window", day(1).Add(-time.Second), "100.00"},
		{"at start", day(1), "90.00"},
		{"inside window", day(5), "90.00"},
		{"last instant", day(11).Add(-time.Second), "90.00"},
		{"at end is exclusive", day(11), "100.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := e.ResolvePrice(context.Background(), 1, tc.at)
			if err != nil {
				t.Fatalf("ResolvePrice: %v", err)
			}
			if !quote.Effective.Equal(dec(tc.want)) {
				t.Fatalf("at %s: expected %s, got %s", tc.at, tc.want, quote.Effective)
			}
		})
	}
}

func TestDiscountRoundsHalfUp(t *testing.T) {
	now := time.Now()
	window := func(p *model.PromoCode) *model.PromoCode {
		p.StartsAt = now.Add(-time.Hour)
		p.EndsAt = now.Add(time.Hour)
		return p
	}

	cases := []struct {
		base    string
		percent string
		want    string
	}{
		{"100.00", "10", "90.00"},
		{"10.99", "15", "9.34"},    // 9.3415
		{"0.99", "50", "0.50"},     // 0.495 rounds up
		{"1.01", "33", "0.68"},     // 0.6767
		{"19.99", "12.5", "17.49"}, // 17.49125
	}
	for _, tc := range cases {
		promos := &fakePromoSource{promos: []*model.PromoCode{
			window(newPromo(1, 1, "R", tc.percent, now, now)),
		}}
		e := newEngine(singleProduct(1, tc.base), promos)

		quote, err := e.ResolvePrice(context.Background(), 1, now)
		if err != nil {
			t.Fatalf("ResolvePrice(%s @ %s%%): %v", tc.base, tc.percent, err)
		}
		if !quote.Effective.Equal(dec(tc.want)) {
			t.Fatalf("%s at %s%%: expected %s, got %s", tc.base, tc.percent, tc.want, quote.Effective)
		}
	}
}

func TestDiscountsNeverStack(t *testing.T) {
	now := time.Now()
	promos := &fakePromoSource{promos: []*model.PromoCode{
		newPromo(1, 1, "OLD10", "10", now.Add(-2*time.Hour), now.Add(time.Hour)),
		newPromo(2, 1, "NEW20", "20", now.Add(-time.Hour), now.Add(time.Hour)),
	}}
	e := newEngine(singleProduct(1, "100.00"), promos)

	quote, err := e.ResolvePrice(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("ResolvePrice: %v", err)
	}
	if quote.Applied == nil || quote.Applied.Code != "NEW20" {
		t.Fatalf("expected latest-start promo NEW20 to win, got %+v", quote.Applied)
	}
	// 只有一个折扣生效：80 而不是 72
	if !quote.Effective.Equal(dec("80.00")) {
		t.Fatalf("expected 80.00, got %s", quote.Effective)
	}
}

func TestPickLatestStartTieBreaksOnID(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	a := newPromo(5, 1, "A", "10", start, end)
	b := newPromo(9, 1, "B", "20", start, end)

	if got := pickLatestStart([]*model.PromoCode{a, b}); got.ID != 9 {
		t.Fatalf("expected promo 9 on equal starts, got %d", got.ID)
	}
	if got := pickLatestStart([]*model.PromoCode{b, a}); got.ID != 9 {
		t.Fatalf("expected promo 9 regardless of order, got %d", got.ID)
	}
}

func TestValidate(t *testing.T) {
	now := time.Now()
	e := newEngine(singleProduct(1, "100.00"), &fakePromoSource{})

	valid := newPromo(1, 1, "OK", "10", now.Add(-time.Hour), now.Add(time.Hour))
	if err := e.Validate(valid, 1, now); err != nil {
		t.Fatalf("expected valid promo, got %v", err)
	}

	disabled := newPromo(2, 1, "OFF", "10", now.Add(-time.Hour), now.Add(time.Hour))
	disabled.Active = false
	if err := e.Validate(disabled, 1, now); err != errors.CodeDisabled {
		t.Fatalf("expected CodeDisabled, got %v", err)
	}

	mismatch := newPromo(3, 2, "OTHER", "10", now.Add(-time.Hour), now.Add(time.Hour))
	if err := e.Validate(mismatch, 1, now); err != errors.ProductMismatch {
		t.Fatalf("expected ProductMismatch, got %v", err)
	}

	expired := newPromo(4, 1, "LATE", "10", now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err := e.Validate(expired, 1, now); err != errors.CodeExpired {
		t.Fatalf("expected CodeExpired, got %v", err)
	}
}

func TestResolveLineRevalidatesReference(t *testing.T) {
	now := time.Now()
	promo := newPromo(7, 1, "SAVE10", "10", now.Add(-time.Hour), now.Add(time.Hour))
	promos := &fakePromoSource{promos: []*model.PromoCode{promo}}
	e := newEngine(singleProduct(1, "100.00"), promos)

	promoID := promo.ID
	line := &model.CartLine{ProductID: 1, Quantity: 2, PromoCodeID: &promoID}

	quote, err := e.ResolveLine(context.Background(), line, now)
	if err != nil {
		t.Fatalf("ResolveLine: %v", err)
	}
	if !quote.Effective.Equal(dec("90.00")) {
		t.Fatalf("expected 90.00 with promo, got %s", quote.Effective)
	}

	// 码被停用后同一行立即回到原价，而不是报错
	promo.Active = false
	quote, err = e.ResolveLine(context.Background(), line, now)
	if err != nil {
		t.Fatalf("ResolveLine after disable: %v", err)
	}
	if quote.Applied != nil || !quote.Effective.Equal(dec("100.00")) {
		t.Fatalf("expected base price after disable, got %s", quote.Effective)
	}

	// 引用的码被删除也只是降级
	missing := int64(404)
	line.PromoCodeID = &missing
	quote, err = e.ResolveLine(context.Background(), line, now)
	if err != nil {
		t.Fatalf("ResolveLine with dangling reference: %v", err)
	}
	if !quote.Effective.Equal(dec("100.00")) {
		t.Fatalf("expected base price for dangling reference, got %s", quote.Effective)
	}
}

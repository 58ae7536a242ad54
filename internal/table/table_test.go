package table

import (
	"testing"

	"tothemoon/internal/domain"

	"github.com/shopspring/decimal"
)

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestPercentRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   decimal.NullDecimal
		want string
	}{
		{name: "null", in: decimal.NullDecimal{}, want: "--"},
		{name: "zero", in: nullDec("0"), want: "+0.00%"},
		{name: "positive", in: nullDec("3.14159"), want: "+3.14%"},
		{name: "negative", in: nullDec("-2.5"), want: "-2.50%"},
		{name: "large", in: nullDec("1234.567"), want: "+1234.57%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.in); got != tt.want {
				t.Fatalf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPercentNeverRendersZeroOrNaNForNull(t *testing.T) {
	t.Parallel()

	got := Percent(decimal.NullDecimal{})
	if got == "0.00%" || got == "+0.00%" || got == "NaN%" {
		t.Fatalf("null percentage rendered as %q", got)
	}
}

func TestMoneyRendering(t *testing.T) {
	t.Parallel()

	usd := NewFormatter("usd")
	tests := []struct {
		in   string
		want string
	}{
		{in: "1234567.891", want: "$1,234,567.89"},
		{in: "64000", want: "$64,000.00"},
		{in: "1", want: "$1.00"},
		{in: "0.5", want: "$0.50"},
		{in: "0", want: "$0.00"},
	}
	for _, tt := range tests {
		if got := usd.Money(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("Money(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := NewFormatter("EUR").Money(decimal.NewFromInt(1500)); got != "€1,500.00" {
		t.Fatalf("unexpected euro rendering %q", got)
	}
	if got := NewFormatter("chf").Money(decimal.NewFromInt(2)); got != "CHF 2.00" {
		t.Fatalf("unexpected fallback prefix %q", got)
	}
}

func TestRankRendering(t *testing.T) {
	t.Parallel()

	if got := Rank(nil); got != Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	r := 7
	if got := Rank(&r); got != "7" {
		t.Fatalf("expected 7, got %q", got)
	}
}

func TestToggleCyclesAscDescAsc(t *testing.T) {
	t.Parallel()

	m := New(NewFormatter("usd"))
	if m.Sort() != nil {
		t.Fatal("expected no sort initially")
	}

	want := []domain.SortDirection{domain.SortAsc, domain.SortDesc, domain.SortAsc, domain.SortDesc}
	for i, dir := range want {
		if !m.Toggle(ColPrice) {
			t.Fatalf("toggle %d: price should be sortable", i)
		}
		spec := m.Sort()
		if spec == nil {
			t.Fatalf("toggle %d: sort should stay engaged", i)
		}
		if spec.Field != domain.SortByPrice || spec.Direction != dir {
			t.Fatalf("toggle %d: got %+v, want price %s", i, spec, dir)
		}
	}
}

func TestToggleOtherColumnReplacesSort(t *testing.T) {
	t.Parallel()

	m := New(NewFormatter("usd"))
	m.Toggle(ColPrice)
	m.Toggle(ColPrice)
	m.Toggle(ColMarketCap)

	col, dir, ok := m.Active()
	if !ok || col != ColMarketCap || dir != domain.SortAsc {
		t.Fatalf("expected market cap ascending, got %v %s %v", col, dir, ok)
	}
	if got := m.Sort().Field; got != domain.SortByMarketCap {
		t.Fatalf("expected market_cap field, got %s", got)
	}
}

func TestToggleIgnoresUnsortableColumns(t *testing.T) {
	t.Parallel()

	m := New(NewFormatter("usd"))
	if m.Toggle(ColRank) || m.Toggle(ColCoin) {
		t.Fatal("rank and coin columns are not sortable")
	}
	if m.Sort() != nil {
		t.Fatal("sort should remain unset")
	}
}

func TestHeaderLabelShowsArrow(t *testing.T) {
	t.Parallel()

	m := New(NewFormatter("usd"))
	if got := m.HeaderLabel(ColVolume); got != "24h Volume" {
		t.Fatalf("unexpected unsorted header %q", got)
	}
	m.Toggle(ColVolume)
	if got := m.HeaderLabel(ColVolume); got != "24h Volume ↑" {
		t.Fatalf("unexpected asc header %q", got)
	}
	m.Toggle(ColVolume)
	if got := m.HeaderLabel(ColVolume); got != "24h Volume ↓" {
		t.Fatalf("unexpected desc header %q", got)
	}
	if got := m.HeaderLabel(ColPrice); got != "Price" {
		t.Fatalf("inactive column should have no arrow, got %q", got)
	}
}

func TestSetSortRoundTrip(t *testing.T) {
	t.Parallel()

	m := New(NewFormatter("usd"))
	spec := &domain.SortSpec{Field: domain.SortByChange7d, Direction: domain.SortDesc}
	if !m.SetSort(spec) {
		t.Fatal("expected known field accepted")
	}
	if got := m.Sort(); *got != *spec {
		t.Fatalf("expected %+v, got %+v", spec, got)
	}
	if m.SetSort(&domain.SortSpec{Field: domain.SortByID}) {
		t.Fatal("id has no column and should be rejected")
	}
	m.SetSort(nil)
	if m.Sort() != nil {
		t.Fatal("nil spec should clear sort")
	}
}

func TestRowsKeepUpstreamOrder(t *testing.T) {
	t.Parallel()

	one, two := 1, 2
	coins := []domain.CoinSummary{
		{ID: "tether", Name: "Tether", Symbol: "USDT", Rank: &two, Price: decimal.NewFromInt(1), Change24h: nullDec("-0.01")},
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Rank: &one, Price: decimal.NewFromInt(64000), Change24h: nullDec("2.345")},
	}

	m := New(NewFormatter("usd"))
	m.Toggle(ColPrice)
	rows := m.Rows(coins)

	if len(rows) != 2 || rows[0].ID != "tether" || rows[1].ID != "bitcoin" {
		t.Fatalf("rows must not be re-sorted locally: %+v", rows)
	}
	cells := rows[1].Cells
	if cells[ColRank] != "1" || cells[ColCoin] != "Bitcoin BTC" || cells[ColPrice] != "$64,000.00" {
		t.Fatalf("unexpected cells %v", cells)
	}
	if cells[ColChange24h] != "+2.35%" || cells[ColChange1h] != Placeholder {
		t.Fatalf("unexpected change cells %v", cells)
	}
	if rows[0].Cells[ColChange24h] != "-0.01%" {
		t.Fatalf("expected negative sign, got %q", rows[0].Cells[ColChange24h])
	}
}

func TestColumnAt(t *testing.T) {
	t.Parallel()

	if c, ok := ColumnAt(2); !ok || c != ColPrice {
		t.Fatalf("expected price column at 2, got %v %v", c, ok)
	}
	if _, ok := ColumnAt(8); ok {
		t.Fatal("expected out of range")
	}
}

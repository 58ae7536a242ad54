package table

import (
	"tothemoon/internal/domain"
)

// Column is one of the fixed listing columns.
type Column int

const (
	ColRank Column = iota
	ColCoin
	ColPrice
	ColChange1h
	ColChange24h
	ColChange7d
	ColVolume
	ColMarketCap
)

// Columns lists every column in display order.
var Columns = []Column{
	ColRank, ColCoin, ColPrice, ColChange1h, ColChange24h, ColChange7d, ColVolume, ColMarketCap,
}

type columnDef struct {
	header    string
	width     int
	right     bool
	sortField domain.SortField
	render    func(Formatter, domain.CoinSummary) string
}

var columnDefs = map[Column]columnDef{
	ColRank: {
		header: "#", width: 5,
		render: func(_ Formatter, c domain.CoinSummary) string { return Rank(c.Rank) },
	},
	ColCoin: {
		header: "Coin", width: 24,
		render: func(_ Formatter, c domain.CoinSummary) string { return c.Name + " " + c.Symbol },
	},
	ColPrice: {
		header: "Price", width: 16, right: true, sortField: domain.SortByPrice,
		render: func(f Formatter, c domain.CoinSummary) string { return f.Money(c.Price) },
	},
	ColChange1h: {
		header: "1h", width: 9, right: true, sortField: domain.SortByChange1h,
		render: func(_ Formatter, c domain.CoinSummary) string { return Percent(c.Change1h) },
	},
	ColChange24h: {
		header: "24h", width: 9, right: true, sortField: domain.SortByChange24h,
		render: func(_ Formatter, c domain.CoinSummary) string { return Percent(c.Change24h) },
	},
	ColChange7d: {
		header: "7d", width: 9, right: true, sortField: domain.SortByChange7d,
		render: func(_ Formatter, c domain.CoinSummary) string { return Percent(c.Change7d) },
	},
	ColVolume: {
		header: "24h Volume", width: 20, right: true, sortField: domain.SortByVolume,
		render: func(f Formatter, c domain.CoinSummary) string { return f.Money(c.Volume24h) },
	},
	ColMarketCap: {
		header: "Market Cap", width: 22, right: true, sortField: domain.SortByMarketCap,
		render: func(f Formatter, c domain.CoinSummary) string { return f.Money(c.MarketCap) },
	},
}

func (c Column) Header() string   { return columnDefs[c].header }
func (c Column) Width() int       { return columnDefs[c].width }
func (c Column) AlignRight() bool { return columnDefs[c].right }

// Sortable reports whether the upstream can order the listing by this column.
func (c Column) Sortable() bool { return columnDefs[c].sortField != "" }

func (c Column) SortField() domain.SortField { return columnDefs[c].sortField }

// Render produces the cell text for one coin.
func (c Column) Render(f Formatter, coin domain.CoinSummary) string {
	return columnDefs[c].render(f, coin)
}

// ColumnAt returns the column at a zero-based display position.
func ColumnAt(i int) (Column, bool) {
	if i < 0 || i >= len(Columns) {
		return 0, false
	}
	return Columns[i], true
}

// ColumnForField maps an upstream sort field back to its column.
func ColumnForField(field domain.SortField) (Column, bool) {
	for _, c := range Columns {
		if c.Sortable() && c.SortField() == field {
			return c, true
		}
	}
	return 0, false
}

// Row is one rendered listing line.
type Row struct {
	ID    string
	Cells []string
}

// Model holds the sort state of the listing and renders pages in the order
// the upstream returned them.
type Model struct {
	formatter Formatter
	active    bool
	column    Column
	direction domain.SortDirection
}

func New(f Formatter) *Model {
	return &Model{formatter: f}
}

// Toggle engages sorting on c. An inactive column starts ascending and an
// engaged one flips direction; there is no return to unsorted. Returns false
// for columns that cannot be sorted.
func (m *Model) Toggle(c Column) bool {
	if !c.Sortable() {
		return false
	}
	if m.active && m.column == c {
		if m.direction == domain.SortAsc {
			m.direction = domain.SortDesc
		} else {
			m.direction = domain.SortAsc
		}
		return true
	}
	m.active = true
	m.column = c
	m.direction = domain.SortAsc
	return true
}

// SetSort restores sort state from a spec. A nil spec clears it.
func (m *Model) SetSort(spec *domain.SortSpec) bool {
	if spec == nil {
		m.active = false
		return true
	}
	c, ok := ColumnForField(spec.Field)
	if !ok {
		return false
	}
	m.active = true
	m.column = c
	m.direction = spec.Direction
	return true
}

// Sort returns the active sort, or nil when the upstream default applies.
func (m *Model) Sort() *domain.SortSpec {
	if !m.active {
		return nil
	}
	return &domain.SortSpec{Field: m.column.SortField(), Direction: m.direction}
}

// Active reports the engaged column and direction.
func (m *Model) Active() (Column, domain.SortDirection, bool) {
	return m.column, m.direction, m.active
}

// HeaderLabel is the column header with a direction arrow when sorted.
func (m *Model) HeaderLabel(c Column) string {
	label := c.Header()
	if !m.active || m.column != c {
		return label
	}
	if m.direction == domain.SortAsc {
		return label + " ↑"
	}
	return label + " ↓"
}

// Rows renders coins in the order given.
func (m *Model) Rows(coins []domain.CoinSummary) []Row {
	rows := make([]Row, 0, len(coins))
	for _, coin := range coins {
		cells := make([]string, len(Columns))
		for i, c := range Columns {
			cells[i] = c.Render(m.formatter, coin)
		}
		rows = append(rows, Row{ID: coin.ID, Cells: cells})
	}
	return rows
}

func (m *Model) Formatter() Formatter {
	return m.formatter
}

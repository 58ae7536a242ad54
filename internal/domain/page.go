package domain

import (
	"errors"
	"fmt"
	"strings"
)

// PageSizes enumerates the allowed listing page sizes.
var PageSizes = []int{50, 100, 150}

const DefaultPageSize = 50

// DefaultOrder is the upstream ordering used when no sort is engaged.
const DefaultOrder = "market_cap_desc"

var ErrInvalidSort = errors.New("invalid sort")

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField names an upstream ordering field.
type SortField string

const (
	SortByMarketCap SortField = "market_cap"
	SortByVolume    SortField = "volume"
	SortByPrice     SortField = "current_price"
	SortByChange1h  SortField = "price_change_percentage_1h_in_currency"
	SortByChange24h SortField = "price_change_percentage_24h"
	SortByChange7d  SortField = "price_change_percentage_7d_in_currency"
	SortByID        SortField = "id"
)

// SortFields lists every field the listing endpoint is asked to order by.
var SortFields = []SortField{
	SortByMarketCap, SortByVolume, SortByPrice,
	SortByChange1h, SortByChange24h, SortByChange7d, SortByID,
}

type SortSpec struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// ParseSort builds a SortSpec from request parameters. An empty field means no sort.
func ParseSort(field, dir string) (*SortSpec, error) {
	field = strings.TrimSpace(strings.ToLower(field))
	if field == "" {
		return nil, nil
	}
	var f SortField
	for _, sf := range SortFields {
		if string(sf) == field {
			f = sf
			break
		}
	}
	if f == "" {
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
	}
	d := SortDirection(strings.TrimSpace(strings.ToLower(dir)))
	switch d {
	case "":
		d = SortDesc
	case SortAsc, SortDesc:
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, dir)
	}
	return &SortSpec{Field: f, Direction: d}, nil
}

// PageQuery identifies one listing page request.
type PageQuery struct {
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Sort     *SortSpec `json:"sort,omitempty"`
}

// Order returns the upstream `order` parameter for the query.
func (q PageQuery) Order() string {
	if q.Sort == nil {
		return DefaultOrder
	}
	return string(q.Sort.Field) + "_" + string(q.Sort.Direction)
}

// Key is the composite cache key for the query.
func (q PageQuery) Key() string {
	return fmt.Sprintf("page=%d:size=%d:order=%s", q.Page, q.PageSize, q.Order())
}

// Equal compares two queries by value, including the sort.
func (q PageQuery) Equal(o PageQuery) bool {
	return q.Key() == o.Key()
}

// ValidPageSize reports whether size is one of PageSizes.
func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

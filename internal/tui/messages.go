package tui

import (
	"tothemoon/internal/domain"
)

type listingLoadedMsg struct {
	query domain.PageQuery
	rows  []domain.CoinSummary
	err   error
}

type totalLoadedMsg struct {
	total int
}

type detailLoadedMsg struct {
	id     string
	detail *domain.CoinDetail
	err    error
}

type searchTimerMsg struct {
	seq uint64
}

type searchResultMsg struct {
	seq    uint64
	result domain.SearchResult
	err    error
}

// openDetailMsg asks the app to switch to the detail screen.
type openDetailMsg struct {
	id string
}

// backToListMsg returns to the list, optionally with a status line.
type backToListMsg struct {
	status string
}

package search

import (
	"strings"
	"time"

	"tothemoon/internal/domain"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	MaxResults      = 5
)

type State int

const (
	Idle State = iota
	Debouncing
	Loading
	Shown
	Dismissed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Loading:
		return "loading"
	case Shown:
		return "shown"
	case Dismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// EffectKind tells the host what to do after an event.
type EffectKind int

const (
	None EffectKind = iota
	StartTimer
	IssueSearch
	Navigate
)

// Effect is the side effect requested by a transition. Seq ties timers and
// responses back to the text generation that produced them.
type Effect struct {
	Kind   EffectKind
	Seq    uint64
	Delay  time.Duration
	Query  string
	CoinID string
}

// Overlay is the search box state machine. It owns no timers or goroutines;
// the host runs the effects and feeds the outcomes back as events.
type Overlay struct {
	state    State
	resume   State
	text     string
	seq      uint64
	results  []domain.SearchCoin
	err      error
	debounce time.Duration
}

func New(debounce time.Duration) *Overlay {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Overlay{debounce: debounce}
}

func (o *Overlay) State() State                 { return o.state }
func (o *Overlay) Text() string                 { return o.text }
func (o *Overlay) Seq() uint64                  { return o.seq }
func (o *Overlay) Results() []domain.SearchCoin { return o.results }
func (o *Overlay) Err() error                   { return o.err }

// Visible reports whether the result panel is open.
func (o *Overlay) Visible() bool {
	return o.state == Debouncing || o.state == Loading || o.state == Shown
}

// Pending reports whether a result is still being awaited.
func (o *Overlay) Pending() bool {
	return o.state == Debouncing || o.state == Loading
}

// NoResults reports a successful lookup that matched nothing.
func (o *Overlay) NoResults() bool {
	return o.state == Shown && o.err == nil && len(o.results) == 0
}

// Keystroke records the new input text and restarts the debounce window.
func (o *Overlay) Keystroke(text string) Effect {
	o.text = text
	o.seq++
	o.results = nil
	o.err = nil
	if strings.TrimSpace(text) == "" {
		o.state = Idle
		return Effect{}
	}
	o.state = Debouncing
	return Effect{Kind: StartTimer, Seq: o.seq, Delay: o.debounce}
}

// TimerFired issues the search when the debounce window for seq closed
// without further input.
func (o *Overlay) TimerFired(seq uint64) Effect {
	if seq != o.seq {
		return Effect{}
	}
	switch {
	case o.state == Debouncing:
		o.state = Loading
	case o.state == Dismissed && o.resume == Debouncing:
		o.resume = Loading
	default:
		return Effect{}
	}
	return Effect{Kind: IssueSearch, Seq: seq, Query: strings.TrimSpace(o.text)}
}

// ResponseArrived applies a search outcome. Responses for an older text
// generation are dropped; the return value reports whether it was applied.
func (o *Overlay) ResponseArrived(seq uint64, result domain.SearchResult, err error) bool {
	if seq != o.seq {
		return false
	}
	switch {
	case o.state == Loading:
		o.state = Shown
	case o.state == Dismissed && o.resume == Loading:
		o.resume = Shown
	default:
		return false
	}
	o.err = err
	o.results = nil
	if err == nil {
		coins := result.Coins
		if len(coins) > MaxResults {
			coins = coins[:MaxResults]
		}
		o.results = append([]domain.SearchCoin(nil), coins...)
	}
	return true
}

// OutsideClick hides the panel and keeps the text.
func (o *Overlay) OutsideClick() {
	if o.state == Idle || o.state == Dismissed {
		return
	}
	o.resume = o.state
	o.state = Dismissed
}

// Focus reopens a dismissed panel.
func (o *Overlay) Focus() {
	if o.state != Dismissed {
		return
	}
	o.state = o.resume
}

// Select picks result i, clears the query and asks the host to open the coin.
func (o *Overlay) Select(i int) Effect {
	if o.state != Shown || i < 0 || i >= len(o.results) {
		return Effect{}
	}
	id := o.results[i].ID
	o.Clear()
	return Effect{Kind: Navigate, CoinID: id}
}

// Clear empties the text and invalidates any outstanding timer or response.
func (o *Overlay) Clear() {
	o.text = ""
	o.seq++
	o.results = nil
	o.err = nil
	o.state = Idle
	o.resume = Idle
}

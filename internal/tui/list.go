package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tothemoon/internal/domain"
	"tothemoon/internal/pagination"
	"tothemoon/internal/search"
	"tothemoon/internal/table"

	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// screen row of the search input, below the title
	searchRow = 1
	// title, search, range line, strip, help, status
	listChromeLines = 6
)

type listView struct {
	svc     Services
	sorter  *table.Model
	pager   *pagination.Controller
	overlay *search.Overlay
	input   textinput.Model
	grid    btable.Model
	spin    spinner.Model

	query        domain.PageQuery
	rows         []domain.CoinSummary
	loading      bool
	err          error
	status       string
	searchCursor int

	width  int
	height int
}

func newListView(svc Services) *listView {
	pager, _ := pagination.New(domain.DefaultPageSize, 0)

	input := textinput.New()
	input.Placeholder = "Search coins"
	input.Prompt = "/ "
	input.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	v := &listView{
		svc:     svc,
		sorter:  table.New(table.NewFormatter(svc.Market.VsCurrency())),
		pager:   pager,
		overlay: search.New(svc.SearchDebounce),
		input:   input,
		spin:    sp,
	}
	v.grid = btable.New(
		btable.WithColumns(v.columns()),
		btable.WithFocused(true),
	)
	v.query = v.pager.Query(nil)
	return v
}

func (v *listView) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.fetchTotal(), v.fetchListing(v.query), v.spin.Tick)
}

func (v *listView) setSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(10, width/3)
	v.resizeGrid()
}

func (v *listView) resizeGrid() {
	h := v.height - listChromeLines - v.panelHeight()
	if h < 3 {
		h = 3
	}
	v.grid.SetHeight(h)
}

func (v *listView) columns() []btable.Column {
	cols := make([]btable.Column, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = btable.Column{Title: v.sorter.HeaderLabel(c), Width: c.Width()}
	}
	return cols
}

// reload requests the page for the current position and sort. Any retained
// data for that page is shown while the fetch runs.
func (v *listView) reload() tea.Cmd {
	v.query = v.pager.Query(v.sorter.Sort())
	v.err = nil
	v.loading = true
	v.grid.SetColumns(v.columns())
	if cached, ok := v.svc.Market.CachedListing(v.query); ok {
		v.setRows(cached)
	}
	return v.fetchListing(v.query)
}

func (v *listView) fetchListing(q domain.PageQuery) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := v.svc.requestContext()
		defer cancel()
		rows, err := v.svc.Market.ListCoins(ctx, q)
		return listingLoadedMsg{query: q, rows: rows, err: err}
	}
}

func (v *listView) fetchTotal() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := v.svc.requestContext()
		defer cancel()
		return totalLoadedMsg{total: v.svc.Market.TotalCoins(ctx)}
	}
}

func (v *listView) runSearch(seq uint64, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := v.svc.requestContext()
		defer cancel()
		res, err := v.svc.Market.Search(ctx, query)
		return searchResultMsg{seq: seq, result: res, err: err}
	}
}

func (v *listView) setRows(rows []domain.CoinSummary) {
	v.rows = rows
	rendered := v.sorter.Rows(rows)
	out := make([]btable.Row, len(rendered))
	for i, r := range rendered {
		out[i] = btable.Row(r.Cells)
	}
	v.grid.SetRows(out)
	if v.grid.Cursor() >= len(out) {
		v.grid.SetCursor(0)
	}
}

// applyEffect turns an overlay effect into a command.
func (v *listView) applyEffect(eff search.Effect) tea.Cmd {
	switch eff.Kind {
	case search.StartTimer:
		seq := eff.Seq
		return tea.Tick(eff.Delay, func(time.Time) tea.Msg { return searchTimerMsg{seq: seq} })
	case search.IssueSearch:
		return v.runSearch(eff.Seq, eff.Query)
	case search.Navigate:
		v.input.SetValue("")
		v.input.Blur()
		id := eff.CoinID
		return func() tea.Msg { return openDetailMsg{id: id} }
	}
	return nil
}

func (v *listView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case listingLoadedMsg:
		if !msg.query.Equal(v.query) {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return nil
		}
		v.setRows(msg.rows)
		return nil

	case totalLoadedMsg:
		before := v.pager.Page()
		v.pager.SetTotal(msg.total)
		if v.pager.Page() != before {
			return v.reload()
		}
		return nil

	case searchTimerMsg:
		return v.applyEffect(v.overlay.TimerFired(msg.seq))

	case searchResultMsg:
		if v.overlay.ResponseArrived(msg.seq, msg.result, msg.err) {
			v.searchCursor = 0
			v.resizeGrid()
		}
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return cmd

	case tea.MouseMsg:
		return v.handleMouse(msg)

	case tea.KeyMsg:
		if v.input.Focused() {
			return v.handleSearchKey(msg)
		}
		return v.handleKey(msg)
	}
	return nil
}

func (v *listView) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if msg.Y >= searchRow && msg.Y < searchRow+1+v.panelHeight() {
		v.overlay.Focus()
		v.resizeGrid()
		return v.input.Focus()
	}
	if v.overlay.Visible() || v.input.Focused() {
		v.overlay.OutsideClick()
		v.input.Blur()
		v.resizeGrid()
	}
	return nil
}

func (v *listView) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.overlay.OutsideClick()
		v.input.Blur()
		v.resizeGrid()
		return nil
	case "enter":
		cmd := v.applyEffect(v.overlay.Select(v.searchCursor))
		v.resizeGrid()
		return cmd
	case "up":
		if v.searchCursor > 0 {
			v.searchCursor--
		}
		return nil
	case "down":
		if v.searchCursor < len(v.overlay.Results())-1 {
			v.searchCursor++
		}
		return nil
	}

	before := v.input.Value()
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	if v.input.Value() == before {
		return cmd
	}
	eff := v.overlay.Keystroke(v.input.Value())
	v.resizeGrid()
	return tea.Batch(cmd, v.applyEffect(eff))
}

func (v *listView) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "q":
		return tea.Quit
	case "left", "h":
		if v.pager.Previous() {
			return v.reload()
		}
		return nil
	case "right", "l":
		if v.pager.Next() {
			return v.reload()
		}
		return nil
	case "[":
		v.pager.CyclePageSize(-1)
		return v.reload()
	case "]":
		v.pager.CyclePageSize(1)
		return v.reload()
	case "r":
		return v.reload()
	case "/":
		v.overlay.Focus()
		v.resizeGrid()
		return v.input.Focus()
	case "esc":
		v.overlay.OutsideClick()
		v.resizeGrid()
		return nil
	case "enter":
		i := v.grid.Cursor()
		if i < 0 || i >= len(v.rows) {
			return nil
		}
		id := v.rows[i].ID
		return func() tea.Msg { return openDetailMsg{id: id} }
	}

	if n, err := strconv.Atoi(key); err == nil && len(key) == 1 {
		if col, ok := table.ColumnAt(n - 1); ok && v.sorter.Toggle(col) {
			return v.reload()
		}
		return nil
	}

	var cmd tea.Cmd
	v.grid, cmd = v.grid.Update(msg)
	return cmd
}

// panelLines renders the search result panel body; nil when hidden.
func (v *listView) panelLines() []string {
	if !v.overlay.Visible() {
		return nil
	}
	switch {
	case v.overlay.Pending():
		return []string{v.spin.View() + " Searching…"}
	case v.overlay.Err() != nil:
		return []string{errorStyle.Render(v.overlay.Err().Error())}
	case v.overlay.NoResults():
		return []string{mutedStyle.Render("No results for " + strconv.Quote(strings.TrimSpace(v.overlay.Text())))}
	}
	lines := make([]string, 0, len(v.overlay.Results()))
	for i, c := range v.overlay.Results() {
		line := fmt.Sprintf("%-4s %s %s", table.Rank(c.Rank), c.Name, mutedStyle.Render(c.Symbol))
		if i == v.searchCursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (v *listView) panelHeight() int {
	lines := v.panelLines()
	if len(lines) == 0 {
		return 0
	}
	// rounded border adds a row above and below
	return len(lines) + 2
}

func (v *listView) View() string {
	var b strings.Builder

	title := titleStyle.Render("tothemoon") + mutedStyle.Render(" · crypto market")
	if v.svc.Username != "" {
		title += mutedStyle.Render("  signed in as " + v.svc.Username)
	}
	b.WriteString(title + "\n")
	b.WriteString(v.input.View() + "\n")
	if lines := v.panelLines(); len(lines) > 0 {
		b.WriteString(panelStyle.Render(strings.Join(lines, "\n")) + "\n")
	}

	switch {
	case v.err != nil:
		b.WriteString(errorStyle.Render("Error loading data: "+v.err.Error()) + "\n")
		b.WriteString(mutedStyle.Render("press r to retry") + "\n")
	case len(v.rows) == 0 && v.loading:
		b.WriteString(v.spin.View() + " Loading market data…\n")
	case len(v.rows) == 0:
		b.WriteString(mutedStyle.Render("No data available") + "\n")
	default:
		b.WriteString(v.grid.View() + "\n")
	}

	rangeLine := v.pager.RangeLabel()
	if v.loading && len(v.rows) > 0 {
		rangeLine += "  " + v.spin.View()
	}
	b.WriteString(mutedStyle.Render(rangeLine) + "\n")
	b.WriteString(v.stripView() + mutedStyle.Render(fmt.Sprintf("   rows per page: %d", v.pager.PageSize())) + "\n")
	b.WriteString(helpLine("←/→", "page", "[/]", "page size", "1-8", "sort", "/", "search", "enter", "open", "q", "quit"))
	if v.status != "" {
		b.WriteString("\n" + statusStyle.Render(v.status))
	}
	if v.width <= 0 {
		return b.String()
	}
	return lipgloss.NewStyle().MaxWidth(v.width).Render(b.String())
}

func (v *listView) stripView() string {
	items := v.pager.Strip()
	parts := make([]string, 0, len(items)+2)
	prev := "‹"
	if !v.pager.CanGoPrevious() {
		prev = mutedStyle.Render(prev)
	}
	parts = append(parts, prev)
	for _, it := range items {
		switch {
		case it.Ellipsis:
			parts = append(parts, mutedStyle.Render("…"))
		case it.Current:
			parts = append(parts, currentStyle.Render("["+strconv.Itoa(it.Page)+"]"))
		default:
			parts = append(parts, strconv.Itoa(it.Page))
		}
	}
	next := "›"
	if !v.pager.CanGoNext() {
		next = mutedStyle.Render(next)
	}
	parts = append(parts, next)
	return strings.Join(parts, " ")
}

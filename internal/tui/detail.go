package tui

import (
	"fmt"
	"strings"

	"tothemoon/internal/domain"
	"tothemoon/internal/provider"
	"tothemoon/internal/table"
	"tothemoon/internal/textutil"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const descriptionParagraphs = 4

type detailView struct {
	svc       Services
	id        string
	detail    *domain.CoinDetail
	formatter table.Formatter
	vp        viewport.Model
	spin      spinner.Model
	width     int
	height    int
}

func newDetailView(svc Services, id string, width, height int) *detailView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	v := &detailView{
		svc:       svc,
		id:        id,
		formatter: table.NewFormatter(svc.Market.VsCurrency()),
		vp:        viewport.New(width, max(height-2, 1)),
		spin:      sp,
	}
	v.setSize(width, height)
	return v
}

func (v *detailView) Init() tea.Cmd {
	return tea.Batch(v.fetch(), v.spin.Tick)
}

func (v *detailView) fetch() tea.Cmd {
	id := v.id
	return func() tea.Msg {
		ctx, cancel := v.svc.requestContext()
		defer cancel()
		d, err := v.svc.Market.GetCoin(ctx, id)
		return detailLoadedMsg{id: id, detail: d, err: err}
	}
}

func (v *detailView) setSize(width, height int) {
	v.width = width
	v.height = height
	v.vp.Width = width
	v.vp.Height = max(height-2, 1)
	if v.detail != nil {
		v.vp.SetContent(v.render())
	}
}

func (v *detailView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.id != v.id {
			return nil
		}
		if msg.err != nil || msg.detail == nil {
			status := fmt.Sprintf("%s: %s", provider.Describe(msg.err), v.id)
			if msg.err == nil {
				status = "coin not found: " + v.id
			}
			return func() tea.Msg { return backToListMsg{status: status} }
		}
		v.detail = msg.detail
		v.vp.SetContent(v.render())
		v.vp.GotoTop()
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "b", "backspace":
			return func() tea.Msg { return backToListMsg{} }
		case "q":
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return cmd
}

func (v *detailView) View() string {
	if v.detail == nil {
		return v.spin.View() + " Loading " + v.id + "…\n\n" + helpLine("esc", "back")
	}
	return v.vp.View() + "\n" + helpLine("↑/↓", "scroll", "esc", "back", "q", "quit")
}

func (v *detailView) render() string {
	d := v.detail
	f := v.formatter
	var b strings.Builder

	header := titleStyle.Render(d.Name) + " " + mutedStyle.Render(d.Symbol)
	if d.Rank != nil {
		header += "  " + currentStyle.Render("Rank #"+table.Rank(d.Rank))
	}
	b.WriteString(header + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("Price", f.Money(d.Price))
	row("Market cap", f.Money(d.MarketCap))
	row("24h volume", f.Money(d.Volume24h))
	row("1h change", changeStyle(d.Change1h, table.Percent(d.Change1h)))
	row("24h change", changeStyle(d.Change24h, table.Percent(d.Change24h)))
	row("7d change", changeStyle(d.Change7d, table.Percent(d.Change7d)))
	row("30d change", changeStyle(d.Change30d, table.Percent(d.Change30d)))
	b.WriteString("\n")
	row("Circulating supply", f.Amount(d.Supply.Circulating))
	row("Total supply", f.Amount(d.Supply.Total))
	row("Max supply", f.Amount(d.Supply.Max))

	links := linkRows(d.Links)
	if len(links) > 0 {
		b.WriteString("\n")
		for _, l := range links {
			row(l[0], l[1])
		}
	}

	if paras := textutil.Paragraphs(d.Description, descriptionParagraphs); len(paras) > 0 {
		width := v.width
		if width <= 0 {
			width = 80
		}
		b.WriteString("\n" + titleStyle.Render("About") + "\n")
		body := lipgloss.NewStyle().Width(max(width-2, 20)).Render(strings.Join(paras, "\n\n"))
		b.WriteString(body + "\n")
	}
	return b.String()
}

func linkRows(l domain.Links) [][2]string {
	var rows [][2]string
	if len(l.Homepage) > 0 {
		rows = append(rows, [2]string{"Homepage", l.Homepage[0]})
	}
	if len(l.BlockchainSites) > 0 {
		rows = append(rows, [2]string{"Explorer", l.BlockchainSites[0]})
	}
	if len(l.Forums) > 0 {
		rows = append(rows, [2]string{"Forum", l.Forums[0]})
	}
	if l.Subreddit != "" {
		rows = append(rows, [2]string{"Reddit", l.Subreddit})
	}
	if len(l.Repos) > 0 {
		rows = append(rows, [2]string{"Source", l.Repos[0]})
	}
	return rows
}

package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenList screen = iota
	screenDetail
)

// AppModel routes between the listing and a single coin's detail screen.
type AppModel struct {
	svc    Services
	screen screen
	list   *listView
	detail *detailView
	width  int
	height int
}

func NewAppModel(svc Services) *AppModel {
	m := &AppModel{
		svc:    svc,
		screen: screenList,
		list:   newListView(svc),
		width:  120,
		height: 40,
	}
	m.list.setSize(m.width, m.height)
	return m
}

func (m *AppModel) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	m.list.setSize(m.width, m.height)
	if m.detail != nil {
		m.detail.setSize(m.width, m.height)
	}
}

func (m *AppModel) Init() tea.Cmd {
	m.list.setSize(m.width, m.height)
	return m.list.Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, m.active()(msg)

	case tea.MouseMsg:
		return m, m.active()(msg)

	case openDetailMsg:
		m.list.status = ""
		m.detail = newDetailView(m.svc, msg.id, m.width, m.height)
		m.screen = screenDetail
		return m, m.detail.Init()

	case backToListMsg:
		m.screen = screenList
		m.detail = nil
		m.list.status = msg.status
		return m, nil

	case detailLoadedMsg:
		if m.detail == nil {
			return m, nil
		}
		return m, m.detail.Update(msg)

	case spinner.TickMsg:
		cmds := []tea.Cmd{m.list.Update(msg)}
		if m.detail != nil {
			cmds = append(cmds, m.detail.Update(msg))
		}
		return m, tea.Batch(cmds...)
	}

	// listing, total and search results belong to the list even while the
	// detail screen is up
	return m, m.list.Update(msg)
}

func (m *AppModel) active() func(tea.Msg) tea.Cmd {
	if m.screen == screenDetail && m.detail != nil {
		return m.detail.Update
	}
	return m.list.Update
}

func (m *AppModel) View() string {
	if m.screen == screenDetail && m.detail != nil {
		return m.detail.View()
	}
	return m.list.View()
}

// Package ui implements the terminal screens: login, catalog, cart,
// checkout, communities, community detail, chat and profile. A single root
// model owns routing and refuses to enter protected routes without a
// session.
package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/picnichood/picnic-cli/internal/api"
	"github.com/picnichood/picnic-cli/internal/cart"
	"github.com/picnichood/picnic-cli/internal/config"
	"github.com/picnichood/picnic-cli/internal/session"
)

// Deps are the owned state objects injected into every screen. They are
// created once at startup and torn down at process end; no ambient
// singletons.
type Deps struct {
	Config  *config.Config
	API     *api.Client
	Session *session.Store
	Cart    *cart.Store
	Log     *slog.Logger
}

type route int

const (
	routeLogin route = iota
	routeCatalog
	routeCommunities
	routeCommunityDetail
	routeChat
	routeCart
	routeCheckout
	routeProfile
)

// screen is one rendered view. Update returns the replacement screen so
// value-type screens can be used throughout.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
}

// inputCapturer is implemented by screens whose focused text fields must
// see digit keys before the tab bar does.
type inputCapturer interface {
	capturingInput() bool
}

// navigateMsg asks the root model to switch screens.
type navigateMsg struct {
	to    route
	param string
}

func navigateTo(to route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

func navigateToCommunity(id string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: routeCommunityDetail, param: id} }
}

// fetchSeq issues the tags on in-flight fetch commands. It is global
// because the root model forwards settling messages to whichever screen is
// current: a per-instance counter would restart at the same values on every
// navigation, letting one instance's result settle on its successor.
var fetchSeq atomic.Int64

func nextFetchSeq() int { return int(fetchSeq.Add(1)) }

// authExpiredMsg is emitted by any screen that hit a 401. The session is
// already cleared by the API client; the root model only has to show
// login.
type authExpiredMsg struct{}

func authExpiredCmd() tea.Cmd {
	return func() tea.Msg { return authExpiredMsg{} }
}

type Model struct {
	deps   *Deps
	route  route
	screen screen
	width  int
	height int
}

// New builds the root model. Without a stored token it starts on login,
// otherwise on the catalog.
func New(deps *Deps) Model {
	m := Model{deps: deps}
	if deps.Session.Token() == "" {
		m.route = routeLogin
		m.screen = newLoginScreen(deps)
	} else {
		m.route = routeCatalog
		m.screen = newCatalogScreen(deps)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.screen.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		var cmd tea.Cmd
		m.screen, cmd = m.screen.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "1", "2", "3", "4", "5":
			if c, ok := m.screen.(inputCapturer); ok && c.capturingInput() {
				break
			}
			if m.route == routeLogin {
				break
			}
			return m.navigate(tabRoutes[msg.String()], "")
		}

	case navigateMsg:
		return m.navigate(msg.to, msg.param)

	case authExpiredMsg:
		m.deps.Log.Info("session_expired_redirect")
		return m.navigate(routeLogin, "")
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

var tabRoutes = map[string]route{
	"1": routeCatalog,
	"2": routeCommunities,
	"3": routeChat,
	"4": routeCart,
	"5": routeProfile,
}

// navigate gates every protected route behind the session store: without a
// token it swaps in the login screen and issues no data fetch.
func (m Model) navigate(to route, param string) (tea.Model, tea.Cmd) {
	if to != routeLogin && m.deps.Session.Token() == "" {
		to = routeLogin
	}

	m.route = to
	switch to {
	case routeLogin:
		m.screen = newLoginScreen(m.deps)
	case routeCatalog:
		m.screen = newCatalogScreen(m.deps)
	case routeCommunities:
		m.screen = newCommunitiesScreen(m.deps)
	case routeCommunityDetail:
		m.screen = newCommunityDetailScreen(m.deps, param)
	case routeChat:
		m.screen = newChatScreen(m.deps)
	case routeCart:
		m.screen = newCartScreen(m.deps)
	case routeCheckout:
		m.screen = newCheckoutScreen(m.deps)
	case routeProfile:
		m.screen = newProfileScreen(m.deps)
	}

	cmds := []tea.Cmd{m.screen.Init()}
	if m.width > 0 {
		size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
		var cmd tea.Cmd
		m.screen, cmd = m.screen.Update(size)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder
	if m.route != routeLogin {
		b.WriteString(m.tabBar())
		b.WriteString("\n\n")
	}
	b.WriteString(m.screen.View())
	return b.String()
}

func (m Model) tabBar() string {
	type tab struct {
		key   string
		label string
		at    route
	}
	tabs := []tab{
		{"1", "Home", routeCatalog},
		{"2", "Community", routeCommunities},
		{"3", "Chat", routeChat},
		{"4", "Cart", routeCart},
		{"5", "Profile", routeProfile},
	}

	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := fmt.Sprintf("%s %s", t.key, t.label)
		if t.at == routeCart {
			if n := m.deps.Cart.Len(); n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
		}
		active := t.at == m.route ||
			(t.at == routeCommunities && m.route == routeCommunityDetail) ||
			(t.at == routeCart && m.route == routeCheckout)
		if active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

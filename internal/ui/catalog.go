package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/picnichood/picnic-cli/internal/api"
	"github.com/picnichood/picnic-cli/internal/cart"
)

var catalogCategories = []string{"All", "Vegetables", "Fruits", "Dairy", "Meat"}

type articlesMsg struct {
	seq      int
	articles []api.Article
	err      error
}

type catalogScreen struct {
	deps     *Deps
	seq      int
	loading  bool
	errMsg   string
	articles []api.Article

	search   textinput.Model
	category int
	cursor   int
	spin     spinner.Model
	added    string
}

func newCatalogScreen(deps *Deps) *catalogScreen {
	search := textinput.New()
	search.Placeholder = "Search products"
	search.CharLimit = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &catalogScreen{deps: deps, loading: true, search: search, spin: sp}
}

func (s *catalogScreen) Init() tea.Cmd {
	return tea.Batch(s.spin.Tick, s.fetch())
}

// fetch tags the command with a fresh sequence number so a result that
// settles after another fetch started (or after navigation rebuilt the
// screen) is dropped instead of applied stale.
func (s *catalogScreen) fetch() tea.Cmd {
	s.seq = nextFetchSeq()
	seq := s.seq
	deps := s.deps
	return func() tea.Msg {
		articles, err := deps.API.Articles(context.Background())
		return articlesMsg{seq: seq, articles: articles, err: err}
	}
}

func (s *catalogScreen) capturingInput() bool {
	return s.search.Focused()
}

func (s *catalogScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case articlesMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthExpired) {
				return s, authExpiredCmd()
			}
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.articles = msg.articles
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.search.Focused() {
			switch msg.String() {
			case "enter", "esc":
				s.search.Blur()
				return s, nil
			}
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			s.cursor = 0
			return s, cmd
		}

		switch msg.String() {
		case "/":
			return s, s.search.Focus()
		case "left", "h":
			if s.category > 0 {
				s.category--
				s.cursor = 0
			}
		case "right", "l":
			if s.category < len(catalogCategories)-1 {
				s.category++
				s.cursor = 0
			}
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.visible())-1 {
				s.cursor++
			}
		case "enter", "a":
			visible := s.visible()
			if s.cursor < len(visible) {
				p := visible[s.cursor]
				s.deps.Cart.Add(cart.Item{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.ImageURL})
				s.added = p.Name
			}
		case "r":
			s.loading = true
			s.errMsg = ""
			return s, tea.Batch(s.spin.Tick, s.fetch())
		}
	}
	return s, nil
}

// visible applies the category chip and the search filter client-side; the
// remote catalog is returned whole.
func (s *catalogScreen) visible() []api.Article {
	category := catalogCategories[s.category]
	query := strings.ToLower(strings.TrimSpace(s.search.Value()))

	out := make([]api.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if category != "All" && !strings.EqualFold(a.Category, category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(a.Name), query) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *catalogScreen) View() string {
	if s.loading {
		return s.spin.View() + " Loading products..."
	}
	if s.errMsg != "" {
		return errorStyle.Render(s.errMsg) + "\n" + helpStyle.Render("r retry")
	}

	var b strings.Builder
	b.WriteString(s.search.View())
	b.WriteString("\n\n")

	chips := make([]string, 0, len(catalogCategories))
	for i, c := range catalogCategories {
		if i == s.category {
			chips = append(chips, activeTabStyle.Render(c))
		} else {
			chips = append(chips, tabStyle.Render(c))
		}
	}
	b.WriteString(strings.Join(chips, " "))
	b.WriteString("\n\n")

	visible := s.visible()
	if len(visible) == 0 {
		b.WriteString(subtleStyle.Render("No products match"))
	}
	for i, p := range visible {
		line := fmt.Sprintf("%-30s %s", p.Name, priceStyle.Render(fmt.Sprintf("€%.2f", p.Price)))
		if i == s.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if s.added != "" {
		b.WriteString("\n")
		b.WriteString(successStyle.Render("Added " + s.added + " to cart"))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter add to cart • / search • ←/→ category • r refresh"))
	return b.String()
}

package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type cartScreen struct {
	deps   *Deps
	cursor int
}

func newCartScreen(deps *Deps) *cartScreen {
	return &cartScreen{deps: deps}
}

func (s *cartScreen) Init() tea.Cmd { return nil }

func (s *cartScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	items := s.deps.Cart.Items()
	if s.cursor >= len(items) && len(items) > 0 {
		s.cursor = len(items) - 1
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(items)-1 {
			s.cursor++
		}
	case "+", "right":
		if s.cursor < len(items) {
			item := items[s.cursor]
			s.deps.Cart.SetQuantity(item.ID, item.Quantity+1)
		}
	case "-", "left":
		// A decrement below one removes the line; the store enforces it.
		if s.cursor < len(items) {
			item := items[s.cursor]
			s.deps.Cart.SetQuantity(item.ID, item.Quantity-1)
		}
	case "d", "delete", "backspace":
		if s.cursor < len(items) {
			s.deps.Cart.Remove(items[s.cursor].ID)
		}
	case "c", "enter":
		if len(items) > 0 {
			return s, navigateTo(routeCheckout)
		}
	}
	return s, nil
}

func (s *cartScreen) View() string {
	items := s.deps.Cart.Items()
	if len(items) == 0 {
		return titleStyle.Render("Your cart is empty") + "\n" +
			subtleStyle.Render("Add some items to get started!")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Shopping Cart"))
	b.WriteString("\n\n")
	for i, item := range items {
		line := fmt.Sprintf("%-26s x%-3d %s", item.Name, item.Quantity,
			priceStyle.Render(fmt.Sprintf("€%.2f", item.Price*float64(item.Quantity))))
		if i == s.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total %s\n", priceStyle.Render(fmt.Sprintf("€%.2f", s.deps.Cart.TotalPrice()))))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("+/- quantity • d remove • enter checkout"))
	return b.String()
}

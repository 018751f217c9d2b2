package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/picnichood/picnic-cli/internal/api"
)

type orderHistoryMsg struct {
	seq    int
	orders []api.OrderDetails
	err    error
}

type profileScreen struct {
	deps    *Deps
	seq     int
	loading bool
	errMsg  string
	orders  []api.OrderDetails
	spin    spinner.Model

	// orderSuccess shows the one-shot confirmation armed by checkout.
	orderSuccess bool
}

func newProfileScreen(deps *Deps) *profileScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &profileScreen{
		deps:         deps,
		loading:      true,
		spin:         sp,
		orderSuccess: deps.Cart.ConsumeOrderSuccess(),
	}
}

func (s *profileScreen) Init() tea.Cmd {
	return tea.Batch(s.spin.Tick, s.fetch())
}

func (s *profileScreen) fetch() tea.Cmd {
	s.seq = nextFetchSeq()
	seq := s.seq
	deps := s.deps
	return func() tea.Msg {
		orders, err := deps.API.OrderHistory(context.Background())
		return orderHistoryMsg{seq: seq, orders: orders, err: err}
	}
}

func (s *profileScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case orderHistoryMsg:
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
		s.orders = msg.orders
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "x":
			// Logout: clear the session, then the guard lands on login.
			if err := s.deps.Session.Clear(); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			s.deps.Log.Info("logout")
			return s, navigateTo(routeLogin)
		case "r":
			s.loading = true
			s.errMsg = ""
			return s, tea.Batch(s.spin.Tick, s.fetch())
		}
	}
	return s, nil
}

func (s *profileScreen) View() string {
	var b strings.Builder

	user := s.deps.Session.User()
	if user != nil {
		b.WriteString(titleStyle.Render(user.Username))
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render(user.Email))
		if user.Role != "" {
			b.WriteString(subtleStyle.Render(" • " + user.Role))
		}
		b.WriteString("\n\n")
	}

	if s.orderSuccess {
		b.WriteString(successStyle.Render("Your order was placed successfully!"))
		b.WriteString("\n\n")
	}

	b.WriteString("Your Orders\n")
	switch {
	case s.loading:
		b.WriteString(s.spin.View() + " Loading orders...")
	case s.errMsg != "":
		b.WriteString(errorStyle.Render(s.errMsg))
	case len(s.orders) == 0:
		b.WriteString(subtleStyle.Render("No orders found"))
	default:
		for _, o := range s.orders {
			ref := o.ID
			if len(ref) > 6 {
				ref = ref[len(ref)-6:]
			}
			b.WriteString(fmt.Sprintf("Order #%s  %s\n", ref, statusLabel(o.Status)))
			for _, line := range o.Lines {
				b.WriteString(fmt.Sprintf("  %s x%d - €%.2f\n",
					line.Article.Name, line.Quantity, line.Article.Price*float64(line.Quantity)))
			}
			b.WriteString(fmt.Sprintf("  Total €%.2f • Delivery %s\n\n",
				o.TotalAmount, o.DeliveryDate.Format("02 Jan 2006")))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r refresh orders • x log out"))
	return b.String()
}

func statusLabel(status string) string {
	switch status {
	case "completed":
		return successStyle.Render(status)
	case "cancelled":
		return errorStyle.Render(status)
	default:
		return subtleStyle.Render(status)
	}
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/picnichood/picnic-cli/internal/api"
)

type orderResultMsg struct {
	err error
}

type checkoutScreen struct {
	deps           *Deps
	communityOrder bool
	deliveryDate   time.Time
	submitting     bool
	spin           spinner.Model
	errMsg         string
}

func newCheckoutScreen(deps *Deps) *checkoutScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &checkoutScreen{
		deps:           deps,
		communityOrder: true,
		deliveryDate:   time.Now().UTC().AddDate(0, 0, 1),
		spin:           sp,
	}
}

func (s *checkoutScreen) Init() tea.Cmd { return nil }

func (s *checkoutScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case " ", "tab":
			s.communityOrder = !s.communityOrder
		case "+", "right":
			s.deliveryDate = s.deliveryDate.AddDate(0, 0, 1)
		case "-", "left":
			if next := s.deliveryDate.AddDate(0, 0, -1); next.After(time.Now().UTC()) {
				s.deliveryDate = next
			}
		case "esc":
			return s, navigateTo(routeCart)
		case "enter":
			return s.submit()
		}

	case orderResultMsg:
		s.submitting = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthExpired) {
				return s, authExpiredCmd()
			}
			s.errMsg = msg.err.Error()
			return s, nil
		}
		// Settled successfully: only now touch the cart.
		s.deps.Cart.Clear()
		s.deps.Cart.SetOrderSuccess()
		s.deps.Log.Info("order_placed")
		return s, navigateTo(routeProfile)

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *checkoutScreen) submit() (screen, tea.Cmd) {
	items := s.deps.Cart.Items()
	if len(items) == 0 {
		s.errMsg = "Your cart is empty"
		return s, nil
	}

	draft := api.OrderDraft{
		Items:        make([]api.OrderItem, 0, len(items)),
		DeliveryDate: s.deliveryDate,
		Status:       "pending",
		TotalAmount:  s.deps.Cart.TotalPrice(),
	}
	for _, item := range items {
		draft.Items = append(draft.Items, api.OrderItem{Article: item.ID, Quantity: item.Quantity})
	}
	if s.communityOrder {
		if user := s.deps.Session.User(); user != nil {
			draft.Community = user.Community
		}
	}

	s.submitting = true
	s.errMsg = ""
	deps := s.deps
	place := func() tea.Msg {
		return orderResultMsg{err: deps.API.PlaceOrder(context.Background(), draft)}
	}
	return s, tea.Batch(s.spin.Tick, place)
}

func (s *checkoutScreen) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Do you still need this?"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Just to make sure :)"))
	b.WriteString("\n\n")

	toggle := "[ ]"
	if s.communityOrder {
		toggle = "[x]"
	}
	b.WriteString(fmt.Sprintf("%s Community order", toggle))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("    Scheduling your delivery with a community saves CO2"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delivery date: %s\n\n", s.deliveryDate.Format("Mon, 02 Jan 2006")))

	var summary strings.Builder
	for _, item := range s.deps.Cart.Items() {
		summary.WriteString(fmt.Sprintf("%s  %dx €%.2f\n", item.Name, item.Quantity, item.Price))
	}
	summary.WriteString(fmt.Sprintf("\nTotal %s", priceStyle.Render(fmt.Sprintf("€%.2f", s.deps.Cart.TotalPrice()))))
	b.WriteString(boxStyle.Render(summary.String()))
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(errorStyle.Render(s.errMsg))
		b.WriteString("\n")
	}
	if s.submitting {
		b.WriteString(s.spin.View() + " Processing...")
	} else {
		b.WriteString(helpStyle.Render("enter place order • space community toggle • +/- delivery date • esc back"))
	}
	return b.String()
}

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

type timeSlot struct {
	value string
	label string
}

var voteSlots = []timeSlot{
	{"morning", "Morning (8:00 - 12:00)"},
	{"afternoon", "Afternoon (12:00 - 16:00)"},
	{"evening", "Evening (16:00 - 20:00)"},
}

type communityMsg struct {
	seq       int
	community *api.Community
	err       error
}

type voteResultMsg struct {
	seq  int
	slot string
	err  error
}

type communityDetailScreen struct {
	deps      *Deps
	id        string
	seq       int
	loading   bool
	errMsg    string
	community *api.Community

	voting     bool
	slotCursor int
	voteSent   string
	spin       spinner.Model
}

func newCommunityDetailScreen(deps *Deps, id string) *communityDetailScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &communityDetailScreen{deps: deps, id: id, loading: true, spin: sp}
}

func (s *communityDetailScreen) Init() tea.Cmd {
	return tea.Batch(s.spin.Tick, s.fetch())
}

func (s *communityDetailScreen) fetch() tea.Cmd {
	s.seq = nextFetchSeq()
	seq := s.seq
	deps := s.deps
	id := s.id
	return func() tea.Msg {
		community, err := deps.API.Community(context.Background(), id)
		return communityMsg{seq: seq, community: community, err: err}
	}
}

func (s *communityDetailScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case communityMsg:
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
		s.community = normalizeCommunity(msg.community, s.id)
		return s, nil

	case voteResultMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.voting = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthExpired) {
				return s, authExpiredCmd()
			}
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.voteSent = msg.slot
		s.deps.Log.Info("vote_submitted", "community", s.id, "slot", msg.slot)
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		if s.voting {
			switch msg.String() {
			case "up", "k":
				if s.slotCursor > 0 {
					s.slotCursor--
				}
			case "down", "j":
				if s.slotCursor < len(voteSlots)-1 {
					s.slotCursor++
				}
			case "enter":
				return s.vote(voteSlots[s.slotCursor].value)
			case "esc":
				s.voting = false
			}
			return s, nil
		}
		switch msg.String() {
		case "v":
			s.voting = true
		case "esc":
			return s, navigateTo(routeCommunities)
		case "r":
			s.loading = true
			s.errMsg = ""
			return s, tea.Batch(s.spin.Tick, s.fetch())
		}
	}
	return s, nil
}

func (s *communityDetailScreen) vote(slot string) (screen, tea.Cmd) {
	s.voting = false
	seq := s.seq
	deps := s.deps
	id := s.id
	send := func() tea.Msg {
		err := deps.API.Vote(context.Background(), id, slot)
		return voteResultMsg{seq: seq, slot: slot, err: err}
	}
	return s, send
}

// normalizeCommunity fills missing fields with the placeholder values the
// product degrades to, so a sparse record still renders a whole view.
func normalizeCommunity(c *api.Community, id string) *api.Community {
	out := *c
	if out.ID == "" {
		out.ID = id
	}
	if out.Name == "" {
		out.Name = "Dummy Community"
	}
	if out.Description == "" {
		out.Description = "Community of Awesome People"
	}
	return &out
}

func (s *communityDetailScreen) View() string {
	if s.loading {
		return s.spin.View() + " Loading community..."
	}
	if s.errMsg != "" {
		return errorStyle.Render(s.errMsg) + "\n" + helpStyle.Render("r retry • esc back")
	}
	if s.community == nil {
		return errorStyle.Render("Community not found")
	}

	c := s.community
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Name))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(c.Description))
	b.WriteString("\n\n")

	b.WriteString("Delivery time: ")
	if c.DeliveryTime != "" {
		b.WriteString(c.DeliveryTime)
	} else {
		b.WriteString(subtleStyle.Render("No delivery time set yet. Vote to choose a time!"))
	}
	b.WriteString("\n\n")

	if s.voting {
		b.WriteString("Choose your preferred delivery time slot:\n")
		for i, slot := range voteSlots {
			marker := "( )"
			if i == s.slotCursor {
				marker = "(•)"
			}
			line := fmt.Sprintf("%s %s", marker, slot.label)
			if i == s.slotCursor {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter submit vote • esc cancel"))
		return b.String()
	}

	if s.voteSent != "" {
		b.WriteString(successStyle.Render("Vote submitted: " + s.voteSent))
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Members (%d):\n", len(c.Members)))
	for _, m := range c.Members {
		b.WriteString(fmt.Sprintf("  %s  %s\n", m.Username, subtleStyle.Render(m.Email)))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("v vote • r refresh • esc back"))
	return b.String()
}

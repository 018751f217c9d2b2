package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// The chat is a local placeholder: messages live only in this screen and
// nothing goes over the wire.
type chatMessage struct {
	id     string
	sender string
	text   string
	sentAt time.Time
}

type chatScreen struct {
	deps     *Deps
	username string
	messages []chatMessage
	input    textinput.Model
	view     viewport.Model
	ready    bool
}

func newChatScreen(deps *Deps) *chatScreen {
	username := "You"
	if user := deps.Session.User(); user != nil {
		username = user.Username
	}

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 280
	input.Focus()

	now := time.Now()
	seeded := []chatMessage{
		{
			id:     uuid.NewString(),
			sender: "Sarah",
			text:   "Hey neighbors! Anyone want to split a community order this week?",
			sentAt: now.Add(-40 * time.Minute),
		},
		{
			id:     uuid.NewString(),
			sender: "Sarah",
			text:   "I voted for the morning slot, works best before work.",
			sentAt: now.Add(-12 * time.Minute),
		},
	}

	return &chatScreen{deps: deps, username: username, messages: seeded, input: input}
}

func (s *chatScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *chatScreen) capturingInput() bool {
	return s.input.Focused()
}

func (s *chatScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - 8
		if height < 3 {
			height = 3
		}
		if !s.ready {
			s.view = viewport.New(msg.Width, height)
			s.ready = true
		} else {
			s.view.Width = msg.Width
			s.view.Height = height
		}
		s.view.SetContent(s.renderMessages())
		s.view.GotoBottom()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(s.input.Value())
			if text == "" {
				return s, nil
			}
			s.messages = append(s.messages, chatMessage{
				id:     uuid.NewString(),
				sender: s.username,
				text:   text,
				sentAt: time.Now(),
			})
			s.input.Reset()
			s.view.SetContent(s.renderMessages())
			s.view.GotoBottom()
			return s, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			s.view, cmd = s.view.Update(msg)
			return s, cmd
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *chatScreen) renderMessages() string {
	var b strings.Builder
	for _, m := range s.messages {
		stamp := subtleStyle.Render(fmt.Sprintf("%s • %s", m.sender, m.sentAt.Format("15:04")))
		if m.sender == s.username {
			b.WriteString(bubbleMine.Render(m.text))
		} else {
			b.WriteString(bubbleTheirs.Render(m.text))
		}
		b.WriteString("\n")
		b.WriteString(stamp)
		b.WriteString("\n\n")
	}
	return b.String()
}

func (s *chatScreen) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Neighborhood Chat"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Sarah, Mike, %s", s.username)))
	b.WriteString("\n\n")
	if s.ready {
		b.WriteString(s.view.View())
	} else {
		b.WriteString(s.renderMessages())
	}
	b.WriteString("\n")
	b.WriteString(s.input.View())
	return b.String()
}

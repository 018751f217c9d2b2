package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/picnichood/picnic-cli/internal/api"
	"github.com/picnichood/picnic-cli/internal/geo"
)

// Communities further than this are not offered for joining.
const nearbyRadiusKm = 1.0

type communitiesMsg struct {
	seq         int
	communities []api.Community
	err         error
}

type userCommunityMsg struct {
	seq         int
	communityID string
	err         error
}

type joinResultMsg struct {
	seq         int
	communityID string
	err         error
}

type communitiesScreen struct {
	deps    *Deps
	seq     int
	loading bool
	joining bool
	errMsg  string
	nearby  []geo.NearbyCommunity
	cursor  int
	spin    spinner.Model

	// noLocation models the fourth screen state: without coordinates no
	// location-dependent data is fetched at all.
	noLocation bool
}

func newCommunitiesScreen(deps *Deps) *communitiesScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &communitiesScreen{
		deps:       deps,
		loading:    deps.Config.HasLocation,
		noLocation: !deps.Config.HasLocation,
		spin:       sp,
	}
}

func (s *communitiesScreen) Init() tea.Cmd {
	if s.noLocation {
		return nil
	}
	return tea.Batch(append([]tea.Cmd{s.spin.Tick}, s.fetch()...)...)
}

// fetch rearms both lookups under one fresh sequence number; results tagged
// with an older number, including those issued by a previous instance of
// this screen, are dropped on settlement.
func (s *communitiesScreen) fetch() []tea.Cmd {
	s.seq = nextFetchSeq()
	seq := s.seq
	deps := s.deps
	communities := func() tea.Msg {
		communities, err := deps.API.Communities(context.Background())
		return communitiesMsg{seq: seq, communities: communities, err: err}
	}
	membership := func() tea.Msg {
		id, err := deps.API.UserCommunity(context.Background())
		return userCommunityMsg{seq: seq, communityID: id, err: err}
	}
	return []tea.Cmd{communities, membership}
}

func (s *communitiesScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case communitiesMsg:
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
		s.nearby = geo.Nearby(msg.communities, s.deps.Config.Latitude, s.deps.Config.Longitude, nearbyRadiusKm)
		if s.cursor >= len(s.nearby) {
			s.cursor = 0
		}
		return s, nil

	case userCommunityMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		// Membership lookup is advisory; a failure other than auth expiry
		// just leaves the join list in place.
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthExpired) {
				return s, authExpiredCmd()
			}
			return s, nil
		}
		if msg.communityID != "" {
			return s, navigateToCommunity(msg.communityID)
		}
		return s, nil

	case joinResultMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.joining = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthExpired) {
				return s, authExpiredCmd()
			}
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.deps.Log.Info("community_joined", "community", msg.communityID)
		return s, navigateToCommunity(msg.communityID)

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.loading || s.joining || s.noLocation {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.nearby)-1 {
				s.cursor++
			}
		case "enter":
			if s.cursor < len(s.nearby) {
				return s.join(s.nearby[s.cursor].ID)
			}
		case "o":
			if s.cursor < len(s.nearby) {
				return s, navigateToCommunity(s.nearby[s.cursor].ID)
			}
		case "r":
			// Refresh also rechecks membership: joining on another device
			// must surface here without a full re-navigation.
			s.loading = true
			s.errMsg = ""
			return s, tea.Batch(append([]tea.Cmd{s.spin.Tick}, s.fetch()...)...)
		}
	}
	return s, nil
}

func (s *communitiesScreen) join(id string) (screen, tea.Cmd) {
	s.joining = true
	s.errMsg = ""
	seq := s.seq
	deps := s.deps
	join := func() tea.Msg {
		err := deps.API.JoinCommunity(context.Background(), id)
		return joinResultMsg{seq: seq, communityID: id, err: err}
	}
	return s, tea.Batch(s.spin.Tick, join)
}

func (s *communitiesScreen) View() string {
	if s.noLocation {
		return titleStyle.Render("Join a community?") + "\n\n" +
			errorStyle.Render("Your location is not configured.") + "\n" +
			subtleStyle.Render("Set PICNIC_LAT and PICNIC_LON to find communities near you.")
	}
	if s.loading {
		return s.spin.View() + " Finding communities near you..."
	}
	if s.errMsg != "" {
		return errorStyle.Render(s.errMsg) + "\n" + helpStyle.Render("r retry")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Join a community?"))
	b.WriteString("\n\n")

	if len(s.nearby) == 0 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("No communities found within %.0f km of your location", nearbyRadiusKm)))
		b.WriteString("\n")
	}
	for i, c := range s.nearby {
		line := fmt.Sprintf("%-24s %.2f km away • %d members", c.Name, c.DistanceKm, len(c.Members))
		if i == s.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
		if c.Description != "" {
			b.WriteString(subtleStyle.Render("    " + c.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Members of a community vote on a shared delivery time to\nreduce delivery trips and save CO2."))
	b.WriteString("\n\n")
	if s.joining {
		b.WriteString(s.spin.View() + " Joining...")
	} else {
		b.WriteString(helpStyle.Render("enter join • o open • r refresh"))
	}
	return b.String()
}

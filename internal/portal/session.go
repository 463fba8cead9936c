package portal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vbonduro/solienne/internal/eden"
)

// CreationsLimit is the number of creations shown on the admin page.
const CreationsLimit = 20

type State int

const (
	StateUnready State = iota
	StateUnauthenticated
	StateDenied
	StateAdmin
)

func (s State) String() string {
	switch s {
	case StateUnready:
		return "unready"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateDenied:
		return "denied"
	case StateAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Signals are the observables exposed by the wallet provider.
type Signals struct {
	Ready         bool   `json:"ready"`
	Authenticated bool   `json:"authenticated"`
	Address       string `json:"address"`
}

type CreationsFetcher interface {
	FetchCreations(ctx context.Context, limit int) ([]eden.Creation, error)
}

// View is what the admin page renders for a session.
type View struct {
	State     State           `json:"-"`
	StateName string          `json:"state"`
	Address   string          `json:"address,omitempty"`
	Loading   bool            `json:"loading"`
	Creations []eden.Creation `json:"creations"`
}

// Empty reports whether the admin grid has nothing to show.
func (v View) Empty() bool {
	return !v.Loading && len(v.Creations) == 0
}

// StateView is the view of a browser that holds no session in that state.
func StateView(state State) View {
	return View{State: state, StateName: state.String()}
}

// Session is the admin page state machine for one browser.
type Session struct {
	allow   *AllowList
	fetcher CreationsFetcher
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	address   string
	loading   bool
	creations []eden.Creation
}

func NewSession(allow *AllowList, fetcher CreationsFetcher, logger *slog.Logger) *Session {
	return &Session{
		allow:   allow,
		fetcher: fetcher,
		logger:  logger,
		state:   StateUnready,
	}
}

// Apply moves the session to the state implied by sig. Entering StateAdmin,
// or changing wallet while in it, fetches the first page of creations once.
func (s *Session) Apply(ctx context.Context, sig Signals) View {
	s.mu.Lock()
	next := s.next(sig)
	addr := normalize(sig.Address)
	refetch := next == StateAdmin && (s.state != StateAdmin || s.address != addr)

	s.state = next
	switch next {
	case StateAdmin, StateDenied:
		s.address = addr
	default:
		s.address = ""
	}
	if next != StateAdmin {
		s.loading = false
		s.creations = nil
	}
	if refetch {
		s.loading = true
		s.creations = nil
	}
	s.mu.Unlock()

	if refetch {
		s.load(ctx, addr)
	}
	return s.View()
}

// Logout drops the wallet and returns to StateUnauthenticated.
func (s *Session) Logout() View {
	s.mu.Lock()
	s.state = StateUnauthenticated
	s.address = ""
	s.loading = false
	s.creations = nil
	s.mu.Unlock()
	return s.View()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		State:     s.state,
		StateName: s.state.String(),
		Address:   s.address,
		Loading:   s.loading,
		Creations: append([]eden.Creation(nil), s.creations...),
	}
}

func (s *Session) next(sig Signals) State {
	switch {
	case !sig.Ready:
		return StateUnready
	case !sig.Authenticated || normalize(sig.Address) == "":
		return StateUnauthenticated
	case s.allow.IsAdmin(sig.Address):
		return StateAdmin
	default:
		return StateDenied
	}
}

// load fetches creations for addr. Failures leave the list empty; the page
// shows its empty state rather than an error.
func (s *Session) load(ctx context.Context, addr string) {
	creations, err := s.fetcher.FetchCreations(ctx, CreationsLimit)
	if err != nil {
		s.logger.Error("failed to fetch creations", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The wallet may have changed while the fetch was in flight.
	if s.state != StateAdmin || s.address != addr {
		return
	}
	s.loading = false
	if err == nil {
		s.creations = creations
	}
}

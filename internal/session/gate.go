package session

import (
	"errors"
	"fmt"
	"sync"

	"taskBoard/internal/logger"

	"go.uber.org/zap"
)

type State int

const (
	Unknown State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

var ErrInvalidTransition = errors.New("invalid session transition")

type Storage interface {
	Load() (Session, bool, error)
	Save(Session) error
	Clear() error
}

// Gate moves Unknown to a known state once on Start, then only between
// Unauthenticated and Authenticated through SignIn and SignOut.
type Gate struct {
	mu        sync.RWMutex
	storage   Storage
	state     State
	session   Session
	listeners []func(from, to State)
}

func NewGate(storage Storage) *Gate {
	return &Gate{storage: storage}
}

func (g *Gate) Start() (State, error) {
	g.mu.Lock()
	if g.state != Unknown {
		state := g.state
		g.mu.Unlock()
		return state, fmt.Errorf("%w: start from %s", ErrInvalidTransition, state)
	}

	sess, ok, err := g.storage.Load()
	if err != nil {
		// нечитаемая сессия равносильна её отсутствию
		logger.Warn("Session: Ошибка чтения сессии", zap.Error(err))
		ok = false
	}

	to := Unauthenticated
	if ok {
		to = Authenticated
		g.session = sess
	}
	notify := g.transition(to)
	g.mu.Unlock()

	notify()
	return to, err
}

func (g *Gate) SignIn(sess Session) error {
	if !sess.Valid() {
		return errors.New("session without user id")
	}

	g.mu.Lock()
	if g.state != Unauthenticated {
		state := g.state
		g.mu.Unlock()
		return fmt.Errorf("%w: sign in from %s", ErrInvalidTransition, state)
	}
	if err := g.storage.Save(sess); err != nil {
		g.mu.Unlock()
		return err
	}
	g.session = sess
	notify := g.transition(Authenticated)
	g.mu.Unlock()

	notify()
	return nil
}

func (g *Gate) SignOut() error {
	g.mu.Lock()
	if g.state != Authenticated {
		state := g.state
		g.mu.Unlock()
		return fmt.Errorf("%w: sign out from %s", ErrInvalidTransition, state)
	}
	if err := g.storage.Clear(); err != nil {
		g.mu.Unlock()
		return err
	}
	g.session = Session{}
	notify := g.transition(Unauthenticated)
	g.mu.Unlock()

	notify()
	return nil
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gate) Session() Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// UserID serves the in-memory session to the api client.
func (g *Gate) UserID() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != Authenticated {
		return "", false
	}
	return g.session.UserID, true
}

// OnChange registers fn for every state change; fn runs outside the lock.
func (g *Gate) OnChange(fn func(from, to State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// transition must be called with mu held; the returned func fires listeners.
func (g *Gate) transition(to State) func() {
	from := g.state
	g.state = to
	listeners := append([]func(from, to State){}, g.listeners...)

	logger.Debug("Session: Переход", zap.Stringer("from", from), zap.Stringer("to", to))
	return func() {
		for _, fn := range listeners {
			fn(from, to)
		}
	}
}

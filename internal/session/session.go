package session

import (
	"sync"
	"time"

	"github.com/vancomm/taskbingo-server/internal/bingo"
)

type Phase int

const (
	AwaitingAuth Phase = iota
	Idle
	AwaitingManualUnlock
	Expired
)

func (p Phase) String() string {
	switch p {
	case AwaitingAuth:
		return "awaiting-auth"
	case Idle:
		return "idle"
	case AwaitingManualUnlock:
		return "awaiting-manual-unlock"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// pending is a manual unlock batch together with the claim that opened
// it. The claim is written with the first confirmed batch.
type pending struct {
	unlock    *bingo.PendingUnlock
	claim     int
	persisted bool
}

// Session is one authenticated client of a board. Its operations are
// serialized by mu.
type Session struct {
	mu        sync.Mutex
	id        string
	cardID    string
	actor     bingo.Actor
	phase     Phase
	startedAt time.Time
	pending   *pending
}

// Info is a point-in-time view of a session.
type Info struct {
	ID        string
	CardID    string
	Actor     bingo.Actor
	Phase     Phase
	StartedAt time.Time
	Pending   *bingo.PendingUnlock
}

func newSession(id, cardID string, now time.Time) *Session {
	return &Session{id: id, cardID: cardID, phase: AwaitingAuth, startedAt: now}
}

func (s *Session) info() Info {
	i := Info{
		ID:        s.id,
		CardID:    s.cardID,
		Actor:     s.actor,
		Phase:     s.phase,
		StartedAt: s.startedAt,
	}
	if s.pending != nil {
		i.Pending = s.pending.unlock
	}
	return i
}

func (s *Session) authenticate(a bingo.Actor) {
	if s.phase == AwaitingAuth {
		s.actor = a
		s.phase = Idle
	}
}

func (s *Session) awaitUnlock(p *pending) {
	s.pending = p
	s.phase = AwaitingManualUnlock
}

func (s *Session) resolve() {
	s.pending = nil
	if s.phase != Expired {
		s.phase = Idle
	}
}

func (s *Session) expire() {
	s.pending = nil
	s.phase = Expired
}

func (s *Session) expired(now time.Time, maxAge time.Duration) bool {
	return s.phase == Expired || (maxAge > 0 && now.Sub(s.startedAt) > maxAge)
}

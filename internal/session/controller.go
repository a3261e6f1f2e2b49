package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/taskbingo-server/internal/bingo"
	"github.com/vancomm/taskbingo-server/internal/docstore"
	"github.com/vancomm/taskbingo-server/internal/hashing"
	"github.com/vancomm/taskbingo-server/internal/journal"
	"github.com/vancomm/taskbingo-server/internal/metrics"
)

const DefaultMaxAge = 12 * time.Hour

// persistedFields are the document fields a play writes back.
var persistedFields = []string{"tiles", "lastUpdated"}

type Options struct {
	MaxAge           time.Duration
	StrictVersioning bool
	Journal          *journal.Journal
	Metrics          *metrics.Metrics
	Now              func() time.Time
	Rand             *rand.Rand
}

// Controller mediates between client sessions and the board store. Every
// play fetches the latest board, applies the change in memory and writes the
// tiles back.
type Controller struct {
	logger  *slog.Logger
	store   docstore.Store
	journal *journal.Journal
	metrics *metrics.Metrics
	now     func() time.Time
	maxAge  time.Duration
	strict  bool

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewController(logger *slog.Logger, store docstore.Store, opts Options) *Controller {
	c := &Controller{
		logger:   logger,
		store:    store,
		journal:  opts.Journal,
		metrics:  opts.Metrics,
		now:      opts.Now,
		maxAge:   opts.MaxAge,
		strict:   opts.StrictVersioning,
		rnd:      opts.Rand,
		sessions: make(map[string]*Session),
	}
	if c.journal == nil {
		c.journal = journal.Discard()
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.maxAge == 0 {
		c.maxAge = DefaultMaxAge
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return c
}

// CreateBoard generates a board from the catalog and stores it. Nothing is
// stored when generation fails.
func (c *Controller) CreateBoard(
	ctx context.Context, catalog []bingo.Task, cfg bingo.Config,
) (*bingo.Board, error) {
	c.rndMu.Lock()
	board, err := bingo.Generate(catalog, cfg, c.rnd)
	c.rndMu.Unlock()
	if err != nil {
		return nil, err
	}

	doc, err := docstore.Encode(board)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	_, err = c.store.Create(ctx, board.ID, doc)
	c.metrics.ObserveStore("create", start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.metrics.BoardsCreated.WithLabelValues(string(board.Mode)).Inc()
	c.journal.BoardCreated(board)
	c.logger.Info("board created", slog.String("card_id", board.ID))
	return board, nil
}

// Board returns the latest stored board and its version.
func (c *Controller) Board(ctx context.Context, cardID string) (*bingo.Board, int64, error) {
	start := time.Now()
	snap, err := c.store.Get(ctx, cardID)
	c.metrics.ObserveStore("get", start)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, 0, ErrBoardNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var board bingo.Board
	if err := snap.Document.Decode(&board); err != nil {
		return nil, 0, fmt.Errorf("unable to decode board %s: %w", cardID, err)
	}
	if board.ID == "" {
		board.ID = cardID
	}
	return &board, snap.Version, nil
}

type Update struct {
	Board   *bingo.Board
	Version int64
}

// Subscribe streams decoded board snapshots until ctx is done.
func (c *Controller) Subscribe(ctx context.Context, cardID string) (<-chan Update, error) {
	snaps, err := c.store.Subscribe(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	updates := make(chan Update)
	c.metrics.Subscribers.Inc()
	go func() {
		defer c.metrics.Subscribers.Dec()
		defer close(updates)
		for snap := range snaps {
			var board bingo.Board
			if err := snap.Document.Decode(&board); err != nil {
				c.logger.Error(
					"unable to decode board snapshot",
					slog.String("card_id", cardID),
					slog.Any("error", err),
				)
				continue
			}
			select {
			case updates <- Update{Board: &board, Version: snap.Version}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates, nil
}

// Login authenticates against a board. Solo boards without a password
// admit anyone; team boards grant the captain or member role depending on
// which of the team's passwords matches.
func (c *Controller) Login(
	ctx context.Context, cardID, team, password string,
) (Info, error) {
	if err := c.ping(ctx); err != nil {
		return Info{}, err
	}
	board, _, err := c.Board(ctx, cardID)
	if err != nil {
		return Info{}, err
	}

	actor, err := authenticate(board, team, password)
	if err != nil {
		c.journal.LoginFailed(cardID, team)
		return Info{}, err
	}

	s := newSession(uuid.NewString(), cardID, c.now())
	s.authenticate(actor)

	c.mu.Lock()
	c.sessions[s.id] = s
	c.metrics.Sessions.Set(float64(len(c.sessions)))
	c.mu.Unlock()

	c.logger.Debug(
		"session started",
		slog.String("card_id", cardID),
		slog.String("team", actor.Team),
		slog.String("role", string(actor.Role)),
	)
	return s.info(), nil
}

func authenticate(board *bingo.Board, team, password string) (bingo.Actor, error) {
	if !board.Mode.Teams() {
		if board.BoardPasswordHash == "" || hashing.Verify(board.BoardPasswordHash, password) {
			return bingo.SoloActor(), nil
		}
		return bingo.Actor{}, ErrIncorrectPassword
	}

	t, ok := board.Team(team)
	if !ok {
		return bingo.Actor{}, ErrTeamNotFound
	}
	switch {
	case hashing.Verify(t.PasswordHash, password):
		return bingo.Actor{Team: t.Name, Role: bingo.RoleCaptain}, nil
	case hashing.Verify(t.MemberPasswordHash, password):
		return bingo.Actor{Team: t.Name, Role: bingo.RoleMember}, nil
	}
	return bingo.Actor{}, ErrIncorrectPassword
}

// SwitchTeam moves a session to another team of the same board. Only the
// target team's captain password is accepted.
func (c *Controller) SwitchTeam(
	ctx context.Context, sessionID, team, password string,
) (Info, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.checkActive(s); err != nil {
		return Info{}, err
	}
	if s.phase == AwaitingManualUnlock {
		return Info{}, ErrUnlockPending
	}
	if err := c.pingOrExpire(ctx, s); err != nil {
		return Info{}, err
	}
	board, _, err := c.Board(ctx, s.cardID)
	if err != nil {
		return Info{}, c.fail(s, err)
	}
	if !board.Mode.Teams() {
		return Info{}, ErrNotTeamBoard
	}
	t, ok := board.Team(team)
	if !ok {
		return Info{}, ErrTeamNotFound
	}
	if !hashing.Verify(t.PasswordHash, password) {
		c.journal.LoginFailed(s.cardID, team)
		return Info{}, ErrIncorrectPassword
	}

	s.actor = bingo.Actor{Team: t.Name, Role: bingo.RoleCaptain}
	return s.info(), nil
}

func (c *Controller) Logout(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
	c.metrics.Sessions.Set(float64(len(c.sessions)))
}

// Session returns the current view of a live session.
func (c *Controller) Session(sessionID string) (Info, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := c.checkActive(s); err != nil {
		return Info{}, err
	}
	return s.info(), nil
}

// Sweep drops expired sessions.
func (c *Controller) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for id, s := range c.sessions {
		s.mu.Lock()
		expired := s.expired(now, c.maxAge)
		s.mu.Unlock()
		if expired {
			delete(c.sessions, id)
			dropped++
		}
	}
	c.metrics.Sessions.Set(float64(len(c.sessions)))
	return dropped
}

// Run sweeps expired sessions every interval until ctx is done.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("expired sessions dropped", slog.Int("count", n))
			}
		}
	}
}

type Outcome struct {
	Board    *bingo.Board
	Version  int64
	Session  Info
	Tile     int
	Revealed []int
	MinesHit []int
	Pending  *bingo.PendingUnlock
}

// Claim runs the claim transaction for the session's actor. In manual
// unlock mode with eligible tiles the claim is held in the session until
// the batch is confirmed and nothing is written yet.
func (c *Controller) Claim(ctx context.Context, sessionID string, index int) (*Outcome, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.checkActive(s); err != nil {
		return nil, err
	}
	if s.phase == AwaitingManualUnlock {
		return nil, ErrUnlockPending
	}
	if err := c.pingOrExpire(ctx, s); err != nil {
		return nil, err
	}
	board, version, err := c.Board(ctx, s.cardID)
	if err != nil {
		return nil, c.fail(s, err)
	}

	result, err := board.Play(index, s.actor)
	if err != nil {
		c.metrics.Claims.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}
	c.metrics.Claims.WithLabelValues("ok").Inc()

	out := &Outcome{Board: board, Version: version, Tile: index, Pending: result.Pending}
	if result.Pending != nil {
		s.awaitUnlock(&pending{unlock: result.Pending, claim: index})
		out.Session = s.info()
		return out, nil
	}

	if out.Version, err = c.persist(ctx, s, board, version); err != nil {
		return nil, err
	}
	out.Revealed = result.Revealed
	if board.Tiles[index].IsMine {
		out.MinesHit = []int{index}
	}
	c.record(s, board, index, out)
	out.Session = s.info()
	return out, nil
}

// ConfirmUnlocks reveals the selected tiles of the pending batch. The
// selection is checked before anything is fetched; a follow-up bonus batch
// keeps the session waiting for more picks.
func (c *Controller) ConfirmUnlocks(
	ctx context.Context, sessionID string, selected []int,
) (*Outcome, error) {
	s, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.checkActive(s); err != nil {
		return nil, err
	}
	if s.phase != AwaitingManualUnlock || s.pending == nil {
		return nil, ErrNoPendingUnlock
	}
	p := s.pending
	// Picks are checked against the batch offered at claim time, not the
	// board fetched below. Tiles revealed by others since then are accepted
	// and left out of the reported reveals.
	if err := p.unlock.Validate(selected); err != nil {
		return nil, err
	}
	if err := c.pingOrExpire(ctx, s); err != nil {
		return nil, err
	}
	board, version, err := c.Board(ctx, s.cardID)
	if err != nil {
		return nil, c.fail(s, err)
	}

	claimed := -1
	if !p.persisted {
		// The board may have moved on since the claim was made.
		if _, err := board.Claim(p.claim, s.actor); err != nil && !board.ClaimedBy(p.claim, s.actor) {
			s.resolve()
			c.metrics.Claims.WithLabelValues(outcomeLabel(err)).Inc()
			return nil, err
		}
		claimed = p.claim
	}

	result, err := p.unlock.Confirm(board, selected)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Board:    board,
		Tile:     claimed,
		Revealed: result.Revealed,
		MinesHit: result.MinesHit,
		Pending:  result.Next,
	}
	if claimed >= 0 && board.Tiles[claimed].IsMine {
		out.MinesHit = append([]int{claimed}, out.MinesHit...)
	}
	if out.Version, err = c.persist(ctx, s, board, version); err != nil {
		return nil, err
	}
	c.record(s, board, claimed, out)

	if result.Next != nil {
		s.awaitUnlock(&pending{unlock: result.Next, claim: p.claim, persisted: true})
	} else {
		s.resolve()
	}
	out.Session = s.info()
	return out, nil
}

func (c *Controller) session(id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// checkActive fails closed once the session is older than the max age.
func (c *Controller) checkActive(s *Session) error {
	if s.expired(c.now(), c.maxAge) {
		s.expire()
		return ErrSessionExpired
	}
	if s.phase == AwaitingAuth {
		return ErrSessionNotFound
	}
	return nil
}

func (c *Controller) ping(ctx context.Context) error {
	start := time.Now()
	err := c.store.Ping(ctx)
	c.metrics.ObserveStore("ping", start)
	if err != nil {
		c.logger.Warn("board store unreachable", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrOffline, err)
	}
	return nil
}

func (c *Controller) pingOrExpire(ctx context.Context, s *Session) error {
	if err := c.ping(ctx); err != nil {
		s.expire()
		return err
	}
	return nil
}

// fail expires the session on store failures. Missing boards and decode
// errors are returned as they are.
func (c *Controller) fail(s *Session, err error) error {
	if errors.Is(err, ErrUnavailable) {
		s.expire()
	}
	return err
}

func (c *Controller) persist(
	ctx context.Context, s *Session, board *bingo.Board, version int64,
) (int64, error) {
	board.Touch(c.now())
	doc, err := docstore.Encode(board)
	if err != nil {
		return 0, err
	}

	expect := docstore.AnyVersion
	if c.strict {
		expect = version
	}
	start := time.Now()
	next, err := c.store.Replace(ctx, s.cardID, doc.Pick(persistedFields...), expect)
	c.metrics.ObserveStore("replace", start)
	if errors.Is(err, docstore.ErrStaleVersion) {
		c.journal.WriteConflict(s.cardID, s.actor)
		s.resolve()
		return 0, ErrConflict
	}
	if err != nil {
		c.logger.Error(
			"unable to persist board",
			slog.String("card_id", s.cardID),
			slog.Any("error", err),
		)
		s.expire()
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return next, nil
}

func (c *Controller) record(s *Session, board *bingo.Board, claimed int, out *Outcome) {
	if claimed >= 0 {
		c.journal.TileClaimed(s.cardID, s.actor, claimed, &board.Tiles[claimed])
	}
	c.journal.TilesRevealed(s.cardID, s.actor, out.Revealed)
	for _, i := range out.MinesHit {
		c.journal.MineTriggered(s.cardID, s.actor, i, board.MineDamage)
	}
	c.metrics.TilesRevealed.Add(float64(len(out.Revealed)))
	c.metrics.MinesTriggered.Add(float64(len(out.MinesHit)))
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, bingo.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, bingo.ErrTileNotVisible):
		return "not_visible"
	case errors.Is(err, bingo.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, bingo.ErrTileOutOfRange):
		return "out_of_range"
	}
	return "error"
}

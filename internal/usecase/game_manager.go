package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tournament"
)

const DefaultSessionTTL = 30 * time.Minute

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}

type resultPublisher interface {
	Publish(ctx context.Context, result *entity.GameResult) error
}

type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	publisher   resultPublisher

	sessionTTL time.Duration
	random     tictactoe.Randomizer
	now        func() time.Time
}

type Option func(*GameManager)

// WithRandomizer sets the source every new board draws its random moves from.
func WithRandomizer(random tictactoe.Randomizer) Option {
	return func(that *GameManager) {
		that.random = random
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(that *GameManager) {
		if ttl > 0 {
			that.sessionTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(that *GameManager) {
		that.now = now
	}
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo, publisher resultPublisher, opts ...Option) *GameManager {
	manager := &GameManager{
		logger:      logger.With("component", "gameManager"),
		sessionRepo: sessionRepo,
		publisher:   publisher,
		sessionTTL:  DefaultSessionTTL,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// CreateSession starts a new tournament for a client.
func (that *GameManager) CreateSession(ctx context.Context) (*entity.SessionView, error) {
	session := entity.NewSession(uuid.NewString(), tournament.New(that.random), that.now())

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "sessionID", session.ID)

	session.Lock()
	defer session.Unlock()

	return entity.NewSessionView(session), nil
}

func (that *GameManager) GetSession(ctx context.Context, sessionID string) (*entity.SessionView, error) {
	session, err := that.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	return entity.NewSessionView(session), nil
}

// PlayTurn plays position for the human and, unless that ended the game, answers
// with the computer's move. A finished game is recorded in the tournament and published.
func (that *GameManager) PlayTurn(ctx context.Context, sessionID string, position int) (*entity.SessionView, error) {
	log := that.logger.With("method", "PlayTurn", "sessionID", sessionID)

	session, err := that.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	board := session.Tournament.Game()

	if board.IsOver() {
		return entity.NewSessionView(session), apperror.ErrGameFinished
	}

	if err = board.PlayPosition(tictactoe.PlayerX, position); err != nil {
		return nil, fmt.Errorf("failed to play position: %w", err)
	}

	if finished, err := that.settle(ctx, session); err != nil || finished {
		if err != nil {
			return nil, err
		}

		return entity.NewSessionView(session), nil
	}

	computerMove, err := board.NextComputerMove()
	if err != nil {
		return nil, fmt.Errorf("failed to pick computer move: %w", err)
	}

	if err = board.PlayPosition(tictactoe.PlayerO, computerMove); err != nil {
		return nil, fmt.Errorf("computer failed to play position %d: %w", computerMove, err)
	}

	log.Debug("turn played", "position", position, "computerMove", computerMove)

	if _, err = that.settle(ctx, session); err != nil {
		return nil, err
	}

	view := entity.NewSessionView(session)
	view.Game.ComputerMove = &computerMove

	return view, nil
}

// NewGame throws away the current board of the session. Counters are kept.
func (that *GameManager) NewGame(ctx context.Context, sessionID string) (*entity.SessionView, error) {
	session, err := that.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	session.Tournament.StartNewGame()

	return entity.NewSessionView(session), nil
}

// EndSession drops the session and its tournament. Unfinished games are not counted anywhere.
func (that *GameManager) EndSession(ctx context.Context, sessionID string) error {
	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	that.logger.Info("session ended", "sessionID", sessionID)

	return nil
}

// EvictIdle drops sessions that have not been used for longer than the session TTL.
func (that *GameManager) EvictIdle(ctx context.Context) (int, error) {
	evicted, err := that.sessionRepo.DeleteIdle(ctx, that.now().Add(-that.sessionTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to evict idle sessions: %w", err)
	}

	if evicted > 0 {
		that.logger.Info("idle sessions evicted", "count", evicted)
	}

	return evicted, nil
}

// settle records the outcome of a finished board. It reports whether the game is over.
func (that *GameManager) settle(ctx context.Context, session *entity.Session) (bool, error) {
	outcome, finished := tournament.OutcomeOf(session.Tournament.Game())
	if !finished {
		return false, nil
	}

	if err := session.Tournament.RecordResult(outcome); err != nil {
		return true, fmt.Errorf("failed to record result: %w", err)
	}

	that.publishResult(ctx, session)

	return true, nil
}

func (that *GameManager) publishResult(ctx context.Context, session *entity.Session) {
	log := that.logger.With("method", "publishResult", "sessionID", session.ID)

	if err := that.publisher.Publish(ctx, entity.NewGameResult(session, that.now())); err != nil {
		log.Error("failed to publish game result", "error", err)
	}
}

func (that *GameManager) getSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Touch(that.now())

	return session, nil
}

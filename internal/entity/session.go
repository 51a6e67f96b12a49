package entity

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/tournament"
)

// Session is one client's tournament against the computer.
// Lock it before touching the tournament.
type Session struct {
	sync.Mutex

	ID         string
	Tournament *tournament.Tournament

	lastSeen atomic.Int64
}

func NewSession(id string, tour *tournament.Tournament, now time.Time) *Session {
	session := &Session{
		ID:         id,
		Tournament: tour,
	}
	session.Touch(now)

	return session
}

// Touch records activity on the session. It does not need the session lock.
func (that *Session) Touch(now time.Time) {
	that.lastSeen.Store(now.UnixNano())
}

func (that *Session) LastSeen() time.Time {
	return time.Unix(0, that.lastSeen.Load())
}

// SessionView is the snapshot sent back to clients.
type SessionView struct {
	ID    string `json:"id"`
	Game  *Game  `json:"game"`
	Stats Stats  `json:"stats"`
}

// NewSessionView snapshots session. The caller must hold the session lock.
func NewSessionView(session *Session) *SessionView {
	return &SessionView{
		ID:    session.ID,
		Game:  NewGame(session.Tournament.Game()),
		Stats: NewStats(session.Tournament.Stats()),
	}
}

// GameResult is published whenever a game of a session ends.
type GameResult struct {
	SessionID    string    `json:"session_id"`
	Winner       string    `json:"winner"`
	WinningCells []int     `json:"winning_cells,omitempty"`
	Stats        Stats     `json:"stats"`
	FinishedAt   time.Time `json:"finished_at"`
}

// NewGameResult describes the finished game of session. The caller must hold the session lock.
func NewGameResult(session *Session, finishedAt time.Time) *GameResult {
	game := NewGame(session.Tournament.Game())

	return &GameResult{
		SessionID:    session.ID,
		Winner:       game.Winner,
		WinningCells: game.WinningCells,
		Stats:        NewStats(session.Tournament.Stats()),
		FinishedAt:   finishedAt,
	}
}

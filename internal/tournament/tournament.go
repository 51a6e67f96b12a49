package tournament

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

var ErrUnknownOutcome = errors.New("unknown game outcome")

// Outcome is the result of a finished game: a win for one side or a stalemate.
type Outcome struct {
	winner    tictactoe.Player
	stalemate bool
}

func Win(player tictactoe.Player) Outcome {
	return Outcome{winner: player}
}

func Stalemate() Outcome {
	return Outcome{stalemate: true}
}

// Winner returns the winning side, or tictactoe.None for a stalemate.
func (that Outcome) Winner() tictactoe.Player {
	return that.winner
}

func (that Outcome) IsStalemate() bool {
	return that.stalemate
}

func (that Outcome) String() string {
	if that.stalemate {
		return "stalemate"
	}

	return that.winner.String() + " won"
}

// OutcomeOf reads the outcome of board. It returns false while the game is in progress.
// Wins are checked before fullness, X before O.
func OutcomeOf(board *tictactoe.Board) (Outcome, bool) {
	switch {
	case board.HasWon(tictactoe.PlayerX):
		return Win(tictactoe.PlayerX), true
	case board.HasWon(tictactoe.PlayerO):
		return Win(tictactoe.PlayerO), true
	case board.IsStalemate():
		return Stalemate(), true
	default:
		return Outcome{}, false
	}
}

// Stats is a snapshot of the tournament counters.
type Stats struct {
	GamesPlayed int
	GamesWonByX int
	GamesWonByO int
}

func (that Stats) Stalemates() int {
	return that.GamesPlayed - that.GamesWonByX - that.GamesWonByO
}

// Tournament owns the game in progress and counts results across games.
// It is not safe for concurrent use.
type Tournament struct {
	stats Stats
	game  *tictactoe.Board

	random tictactoe.Randomizer
}

// New starts a tournament with a fresh game. random is handed to every board it creates.
func New(random tictactoe.Randomizer) *Tournament {
	return &Tournament{
		game:   tictactoe.NewBoard(random),
		random: random,
	}
}

func (that *Tournament) Game() *tictactoe.Board {
	return that.game
}

// StartNewGame replaces the current board. Counters are kept.
func (that *Tournament) StartNewGame() {
	that.game = tictactoe.NewBoard(that.random)
}

func (that *Tournament) RecordResult(outcome Outcome) error {
	switch {
	case outcome.stalemate:
	case outcome.winner == tictactoe.PlayerX:
		that.stats.GamesWonByX++
	case outcome.winner == tictactoe.PlayerO:
		that.stats.GamesWonByO++
	default:
		return fmt.Errorf("%w: winner %d", ErrUnknownOutcome, outcome.winner)
	}

	that.stats.GamesPlayed++

	return nil
}

func (that *Tournament) Stats() Stats {
	return that.stats
}

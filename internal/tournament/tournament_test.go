package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

func TestTournament_RecordResult(t *testing.T) {
	t.Run("Counts wins and stalemates", func(t *testing.T) {
		// Given: a new tournament
		tour := New(nil)

		// When: results of four games are recorded
		require.NoError(t, tour.RecordResult(Win(tictactoe.PlayerX)))
		require.NoError(t, tour.RecordResult(Win(tictactoe.PlayerO)))
		require.NoError(t, tour.RecordResult(Win(tictactoe.PlayerO)))
		require.NoError(t, tour.RecordResult(Stalemate()))

		// Then: every counter reflects the results
		expected := Stats{GamesPlayed: 4, GamesWonByX: 1, GamesWonByO: 2}
		assert.Equal(t, expected, tour.Stats())
		assert.Equal(t, 1, tour.Stats().Stalemates())
	})

	t.Run("Rejects an outcome without winner", func(t *testing.T) {
		// Given: a new tournament
		tour := New(nil)

		// When: a zero outcome and a win for nobody are recorded
		errZero := tour.RecordResult(Outcome{})
		errNone := tour.RecordResult(Win(tictactoe.None))

		// Then: both are rejected and nothing is counted
		require.ErrorIs(t, errZero, ErrUnknownOutcome)
		require.ErrorIs(t, errNone, ErrUnknownOutcome)
		assert.Equal(t, Stats{}, tour.Stats())
	})
}

func TestTournament_StartNewGame(t *testing.T) {
	// Given: a tournament whose first game was won by O
	tour := New(nil)
	first := tour.Game()
	require.NoError(t, first.PlayPosition(tictactoe.PlayerO, 0))
	require.NoError(t, first.PlayPosition(tictactoe.PlayerO, 1))
	require.NoError(t, first.PlayPosition(tictactoe.PlayerO, 2))
	require.NoError(t, tour.RecordResult(Win(tictactoe.PlayerO)))

	// When: a new game is started
	tour.StartNewGame()

	// Then: the board is fresh and the counters survived
	assert.NotSame(t, first, tour.Game())
	assert.Zero(t, tour.Game().MoveCount())
	assert.Equal(t, Stats{GamesPlayed: 1, GamesWonByO: 1}, tour.Stats())
}

func TestOutcomeOf(t *testing.T) {
	t.Run("Game in progress", func(t *testing.T) {
		board := tictactoe.NewBoard(nil)
		require.NoError(t, board.PlayPosition(tictactoe.PlayerX, 4))

		_, ok := OutcomeOf(board)

		assert.False(t, ok)
	})

	t.Run("Human wins on a full board", func(t *testing.T) {
		// Given: X completes the top row with the last cell
		board := tictactoe.NewBoard(nil)
		for _, position := range []int{0, 1, 2, 4, 7} {
			require.NoError(t, board.PlayPosition(tictactoe.PlayerX, position))
		}
		for _, position := range []int{3, 5, 6, 8} {
			require.NoError(t, board.PlayPosition(tictactoe.PlayerO, position))
		}

		// When: the outcome is read
		outcome, ok := OutcomeOf(board)

		// Then: the win is reported rather than the stalemate
		require.True(t, ok)
		assert.Equal(t, tictactoe.PlayerX, outcome.Winner())
		assert.False(t, outcome.IsStalemate())
		assert.Equal(t, "X won", outcome.String())
	})

	t.Run("Stalemate", func(t *testing.T) {
		board := tictactoe.NewBoard(nil)
		for _, position := range []int{0, 2, 3, 7, 8} {
			require.NoError(t, board.PlayPosition(tictactoe.PlayerX, position))
		}
		for _, position := range []int{1, 4, 5, 6} {
			require.NoError(t, board.PlayPosition(tictactoe.PlayerO, position))
		}

		outcome, ok := OutcomeOf(board)

		require.True(t, ok)
		assert.True(t, outcome.IsStalemate())
		assert.Equal(t, tictactoe.None, outcome.Winner())
		assert.Equal(t, "stalemate", outcome.String())
	})
}

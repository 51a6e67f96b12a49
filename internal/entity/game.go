package entity

import (
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tournament"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

const (
	AlertTitle     = "Game over!"
	AlertYouWin    = "Congratulations! You won."
	AlertYouLose   = "Your opponent won."
	AlertStalemate = "This game ended in a stalemate."
)

// Game is what a client needs to draw the board after a turn.
type Game struct {
	Board        [tictactoe.NumberOfPositions]string `json:"board"`
	Status       string                              `json:"status"`
	Winner       string                              `json:"winner,omitempty"`
	WinningCells []int                               `json:"winning_cells,omitempty"`
	ComputerMove *int                                `json:"computer_move,omitempty"`
	Alert        *Alert                              `json:"alert,omitempty"`
}

// Alert is the end of game message.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewGame renders board. The winner, winning cells and alert are only set once the game is over.
func NewGame(board *tictactoe.Board) *Game {
	game := &Game{Status: StatusOngoing}

	for position := range game.Board {
		game.Board[position] = board.Cell(position).String()
	}

	outcome, finished := tournament.OutcomeOf(board)
	if !finished {
		return game
	}

	game.Status = StatusFinished
	game.Alert = &Alert{Title: AlertTitle}

	switch outcome.Winner() {
	case tictactoe.PlayerX:
		game.Winner = PlayerX
		game.Alert.Message = AlertYouWin
	case tictactoe.PlayerO:
		game.Winner = PlayerO
		game.Alert.Message = AlertYouLose
	default:
		game.Winner = PlayerTie
		game.Alert.Message = AlertStalemate
	}

	if outcome.Winner() != tictactoe.None {
		game.WinningCells = board.WinningCells()
	}

	return game
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// Stats are the tournament counters shown in the footer.
type Stats struct {
	GamesPlayed int `json:"games_played"`
	GamesWonByX int `json:"games_won_by_x"`
	GamesWonByO int `json:"games_won_by_o"`
	Stalemates  int `json:"stalemates"`
}

func NewStats(stats tournament.Stats) Stats {
	return Stats{
		GamesPlayed: stats.GamesPlayed,
		GamesWonByX: stats.GamesWonByX,
		GamesWonByO: stats.GamesWonByO,
		Stalemates:  stats.Stalemates(),
	}
}

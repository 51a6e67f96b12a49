package tictactoe

import (
	"errors"
	"fmt"
	"math/bits"
)

// Player identifies who owns a position on the board.
type Player uint8

const (
	None Player = iota
	// PlayerX is the human, who always moves first.
	PlayerX
	// PlayerO is the computer.
	PlayerO
)

func (that Player) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

const (
	NumberOfPositions = 9

	fullBoard      uint16 = 0x1FF
	centerPosition        = 4
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrUnknownPlayer   = errors.New("unknown player")
)

type winningPattern struct {
	mask  uint16
	cells [3]int
}

// winningPositions is scanned in declaration order, which decides WinningCells
// when a board holds more than one line.
var winningPositions = [...]winningPattern{
	{mask: 0x7, cells: [3]int{0, 1, 2}},   // top row
	{mask: 0x38, cells: [3]int{3, 4, 5}},  // middle row
	{mask: 0x1C0, cells: [3]int{6, 7, 8}}, // bottom row
	{mask: 0x49, cells: [3]int{0, 3, 6}},  // left column
	{mask: 0x92, cells: [3]int{1, 4, 7}},  // middle column
	{mask: 0x124, cells: [3]int{2, 5, 8}}, // right column
	{mask: 0x111, cells: [3]int{0, 4, 8}}, // left diagonal
	{mask: 0x54, cells: [3]int{2, 4, 6}},  // right diagonal
}

// Board is the state of one game kept as two 9-bit masks, one per player.
// A Board is not safe for concurrent use.
type Board struct {
	xBoard uint16
	oBoard uint16

	random Randomizer
}

// NewBoard returns an empty board. A nil random falls back to the process-wide source.
func NewBoard(random Randomizer) *Board {
	if random == nil {
		random = defaultRandom{}
	}

	return &Board{random: random}
}

// PlayPosition marks position for player. Out of range and occupied positions are
// rejected and leave the board untouched.
func (that *Board) PlayPosition(player Player, position int) error {
	if !isValidPosition(position) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}

	if !that.IsAvailable(position) {
		return fmt.Errorf("%w: %d", ErrCellOccupied, position)
	}

	switch player {
	case PlayerX:
		that.xBoard |= positionBit(position)
	case PlayerO:
		that.oBoard |= positionBit(position)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, player)
	}

	return nil
}

// IsAvailable reports whether nobody has played position yet.
func (that *Board) IsAvailable(position int) bool {
	if !isValidPosition(position) {
		return false
	}

	return (that.xBoard|that.oBoard)&positionBit(position) == 0
}

// AvailablePositions lists the open positions in ascending order.
func (that *Board) AvailablePositions() []int {
	available := make([]int, 0, NumberOfPositions)
	for position := range NumberOfPositions {
		if that.IsAvailable(position) {
			available = append(available, position)
		}
	}

	return available
}

func (that *Board) HasWon(player Player) bool {
	switch player {
	case PlayerX:
		return isWinnerBoard(that.xBoard)
	case PlayerO:
		return isWinnerBoard(that.oBoard)
	default:
		return false
	}
}

// IsStalemate reports a full board. It does not exclude a won board, so check
// HasWon first.
func (that *Board) IsStalemate() bool {
	return that.xBoard|that.oBoard == fullBoard
}

// IsOver reports whether either player has won or the board is full.
func (that *Board) IsOver() bool {
	return that.HasWon(PlayerX) || that.HasWon(PlayerO) || that.IsStalemate()
}

// WinningCells returns the line that decided the game, or nil when nobody won.
// X's board is checked before O's.
func (that *Board) WinningCells() []int {
	if that.HasWon(PlayerX) {
		return positionsOnWinningBoard(that.xBoard)
	}

	return positionsOnWinningBoard(that.oBoard)
}

// Cell returns the owner of position, or None.
func (that *Board) Cell(position int) Player {
	if !isValidPosition(position) {
		return None
	}

	bit := positionBit(position)

	switch {
	case that.xBoard&bit != 0:
		return PlayerX
	case that.oBoard&bit != 0:
		return PlayerO
	default:
		return None
	}
}

// Masks returns the raw bitboards of X and O.
func (that *Board) Masks() (uint16, uint16) {
	return that.xBoard, that.oBoard
}

func (that *Board) MoveCount() int {
	return bits.OnesCount16(that.xBoard | that.oBoard)
}

func isValidPosition(position int) bool {
	return position >= 0 && position < NumberOfPositions
}

func positionBit(position int) uint16 {
	return 1 << position
}

func isWinnerBoard(board uint16) bool {
	for _, pattern := range winningPositions {
		if pattern.mask&board == pattern.mask {
			return true
		}
	}

	return false
}

func positionsOnWinningBoard(board uint16) []int {
	for _, pattern := range winningPositions {
		if pattern.mask&board == pattern.mask {
			cells := pattern.cells
			return cells[:]
		}
	}

	return nil
}

// winsBoard reports whether board becomes a winner once position is added.
func winsBoard(board uint16, position int) bool {
	return isWinnerBoard(board | positionBit(position))
}

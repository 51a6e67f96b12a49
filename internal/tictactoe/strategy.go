package tictactoe

import (
	"errors"
	"math/rand/v2"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Randomizer draws an int in [0, n).
type Randomizer interface {
	IntN(n int) int
}

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // it's ok
}

// reply is a fixed answer to an exact X opening.
type reply struct {
	patterns []uint16
	position int
	needOpen bool
}

// heuristicReplies are matched by equality against X's board, in order.
var heuristicReplies = [...]reply{
	{patterns: []uint16{0x44, 0xC}, position: 1},
	{patterns: []uint16{0x42, 0x108, 0x102}, position: 0, needOpen: true},
	{patterns: []uint16{0xC0, 0x24, 0xA4}, position: 8, needOpen: true},
}

// NextComputerMove picks the position O should play next:
// take a win, else block X, else the center, else a known reply, else a random open cell.
func (that *Board) NextComputerMove() (int, error) {
	if position, ok := that.takeOrBlock(); ok {
		return position, nil
	}

	if that.IsAvailable(centerPosition) {
		return centerPosition, nil
	}

	if position, ok := that.heuristicReply(); ok {
		return position, nil
	}

	return that.randomMove()
}

// takeOrBlock scans the board once. An O win stops the scan at once, so an X
// threat at a later position is never looked at.
func (that *Board) takeOrBlock() (int, bool) {
	block := -1

	for position := range NumberOfPositions {
		if !that.IsAvailable(position) {
			continue
		}

		if winsBoard(that.oBoard, position) {
			return position, true
		}

		if block < 0 && winsBoard(that.xBoard, position) {
			block = position
		}
	}

	return block, block >= 0
}

func (that *Board) heuristicReply() (int, bool) {
	for _, candidate := range heuristicReplies {
		if candidate.needOpen && !that.IsAvailable(candidate.position) {
			continue
		}

		for _, pattern := range candidate.patterns {
			if that.xBoard == pattern {
				return candidate.position, true
			}
		}
	}

	return 0, false
}

// randomMove draws uniformly from every open position, including the last one.
func (that *Board) randomMove() (int, error) {
	available := that.AvailablePositions()
	if len(available) == 0 {
		return -1, ErrNoAvailableMoves
	}

	return available[that.random.IntN(len(available))], nil
}

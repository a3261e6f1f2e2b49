package handlers

import (
	"errors"
	"strconv"
	"strings"
)

// Maps known commands to their number of arguments, -1 for any.
var commandNargs = map[string]int{
	"g": 0,
	"c": 1,
	"u": -1,
}

type command struct {
	name  string
	tiles []int
}

func parseCommand(line string) (command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return command{}, errors.New("empty command")
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return command{}, errors.New("unknown command")
	}
	if nargs >= 0 && nargs != len(parts)-1 {
		return command{}, errors.New("invalid number of arguments")
	}
	c := command{name: parts[0], tiles: make([]int, 0, len(parts)-1)}
	for _, arg := range parts[1:] {
		tile, err := strconv.Atoi(arg)
		if err != nil {
			return command{}, errors.New("tile arguments must be ints")
		}
		c.tiles = append(c.tiles, tile)
	}
	return c, nil
}

// byPiece splits s on sep, skipping blank pieces.
func byPiece(s, sep string) []string {
	pieces := make([]string, 0)
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

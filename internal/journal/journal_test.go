package journal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/taskbingo-server/internal/bingo"
)

func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestJournalEntries(t *testing.T) {
	var buf bytes.Buffer
	j := NewWriter(&buf)
	red := bingo.Actor{Team: "Red", Role: bingo.RoleCaptain}

	j.TileClaimed("b1", red, 4, &bingo.Tile{Task: &bingo.Task{Name: "run", Value: bingo.IntValue(3)}})
	j.TilesRevealed("b1", red, nil)
	j.TilesRevealed("b1", red, []int{1, 2})
	j.MineTriggered("b1", bingo.SoloActor(), 0, 10)
	j.LoginFailed("b1", "Blue")

	got := entries(t, &buf)
	require.Len(t, got, 4)

	assert.Equal(t, "tile claimed", got[0]["msg"])
	assert.Equal(t, "Red", got[0]["team"])
	assert.Equal(t, "run", got[0]["task"])
	assert.EqualValues(t, 3, got[0]["points"])

	assert.Equal(t, "tiles revealed", got[1]["msg"])
	assert.Equal(t, []any{1.0, 2.0}, got[1]["tiles"])

	assert.Equal(t, "mine triggered", got[2]["msg"])
	assert.Equal(t, "warning", got[2]["level"])
	assert.NotContains(t, got[2], "team")

	assert.Equal(t, "login failed", got[3]["msg"])
}

func TestJournalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := New(path)
	require.NoError(t, err)

	j.BoardCreated(&bingo.Board{ID: "b1", Mode: bingo.Solo, GridSize: 5})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"card_id":"b1"`)
	assert.Contains(t, string(data), "board created")
}

package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/taskbingo-server/internal/bingo"
)

func TestCatalogCRUD(t *testing.T) {
	c := New(bingo.Task{Name: "walk the dog"})

	i, err := c.Add(bingo.Task{Name: "  run 5k ", Difficulty: 9, Value: bingo.IntValue(3)})
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	tasks := c.List()
	require.Len(t, tasks, 2)
	assert.Equal(t, "run 5k", tasks[1].Name)
	assert.Equal(t, bingo.MaxDifficultyTier, tasks[1].Difficulty)

	require.NoError(t, c.Edit(0, bingo.Task{Name: "walk the cat"}))
	assert.Equal(t, "walk the cat", c.List()[0].Name)

	removed, err := c.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, "walk the cat", removed.Name)
	assert.Equal(t, 1, c.Len())
}

func TestCatalogErrors(t *testing.T) {
	c := New(bingo.Task{Name: "a"})

	_, err := c.Add(bingo.Task{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidTask)
	_, err = c.Add(bingo.Task{Name: "b", Difficulty: -1})
	assert.ErrorIs(t, err, ErrInvalidTask)
	assert.ErrorIs(t, c.Edit(1, bingo.Task{Name: "b"}), ErrIndexOutOfRange)
	_, err = c.Delete(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, 1, c.Len())
}

func TestCatalogListIsACopy(t *testing.T) {
	c := New(bingo.Task{Name: "a"})
	tasks := c.List()
	tasks[0].Name = "changed"
	assert.Equal(t, "a", c.List()[0].Name)
}

func TestCatalogImport(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		added int
		err   error
	}{
		{
			name:  "array",
			data:  `[{"name": "x", "difficulty": 1, "value": 2}, {"name": "y", "value": "?"}]`,
			added: 2,
		},
		{
			name: "object",
			data: `{"name": "x"}`,
			err:  ErrNotArray,
		},
		{
			name: "empty",
			data: ``,
			err:  ErrNotArray,
		},
		{
			name: "malformed",
			data: `[{"name": "x"`,
			err:  ErrInvalidTask,
		},
		{
			name: "unnamed entry",
			data: `[{"name": "x"}, {"description": "no name"}]`,
			err:  ErrInvalidTask,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := New(bingo.Task{Name: "existing"})
			added, err := c.Import([]byte(test.data))
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				assert.Equal(t, 1, c.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.added, added)
			assert.Equal(t, 1+test.added, c.Len())
		})
	}
}

func TestCatalogExportImport(t *testing.T) {
	c := New(
		bingo.Task{Name: "a", Description: "first", Difficulty: 2, Value: bingo.IntValue(5)},
		bingo.Task{Name: "b"},
	)
	data, err := c.Export()
	require.NoError(t, err)

	var decoded []bingo.Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, c.List(), decoded)

	other := New()
	added, err := other.Import(data)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, c.List(), other.List())
}

func TestCatalogExportEmpty(t *testing.T) {
	data, err := New().Export()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCatalogLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "from file"}]`), 0o600))

	c := New()
	added, err := c.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, c.List()[0].Points())

	_, err = c.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

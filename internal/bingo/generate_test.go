package bingo

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(n int, tiers int) []Task {
	catalog := make([]Task, n)
	for i := range catalog {
		catalog[i] = Task{
			Name:       fmt.Sprintf("task %d", i),
			Difficulty: i % tiers,
			Value:      IntValue(i%tiers + 1),
		}
	}
	return catalog
}

func testTeams() []Team {
	return []Team{
		{Name: "Red", PasswordHash: "r1", MemberPasswordHash: "r2"},
		{Name: "Blue", PasswordHash: "b1", MemberPasswordHash: "b2"},
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		catalog int
		cfg     Config
		err     error
	}{
		{
			name:    "too small",
			catalog: 100,
			cfg:     Config{GridSize: 2},
			err:     ErrInvalidGridSize,
		},
		{
			name:    "too large",
			catalog: 1000,
			cfg:     Config{GridSize: 16},
			err:     ErrInvalidGridSize,
		},
		{
			name:    "empty catalog",
			catalog: 0,
			cfg:     Config{GridSize: 3},
			err:     ErrEmptyCatalog,
		},
		{
			name:    "insufficient tasks",
			catalog: 8,
			cfg:     Config{GridSize: 3},
			err:     ErrInsufficientTasks,
		},
		{
			name:    "all mines",
			catalog: 9,
			cfg:     Config{GridSize: 3, MineCount: 9},
			err:     ErrInvalidMineCount,
		},
		{
			name:    "negative mines",
			catalog: 9,
			cfg:     Config{GridSize: 3, MineCount: -1},
			err:     ErrInvalidMineCount,
		},
		{
			name:    "unknown mode",
			catalog: 9,
			cfg:     Config{GridSize: 3, Mode: "coop"},
			err:     ErrInvalidConfig,
		},
		{
			name:    "one team",
			catalog: 9,
			cfg:     Config{GridSize: 3, Mode: MultiClaim, Teams: testTeams()[:1]},
			err:     ErrInvalidTeams,
		},
		{
			name:    "shared passwords",
			catalog: 9,
			cfg: Config{GridSize: 3, Mode: SingleClaim, Teams: []Team{
				{Name: "Red", PasswordHash: "x", MemberPasswordHash: "x"},
				{Name: "Blue", PasswordHash: "b1", MemberPasswordHash: "b2"},
			}},
			err: ErrInvalidTeams,
		},
		{
			name:    "duplicate team",
			catalog: 9,
			cfg: Config{GridSize: 3, Mode: SingleClaim, Teams: []Team{
				{Name: "Red", PasswordHash: "r1", MemberPasswordHash: "r2"},
				{Name: " Red ", PasswordHash: "b1", MemberPasswordHash: "b2"},
			}},
			err: ErrInvalidTeams,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			b, err := Generate(testCatalog(test.catalog, 5), test.cfg, r)
			require.ErrorIs(t, err, test.err)
			assert.Nil(t, b)
		})
	}
}

func TestGenerateMinesAvoidCenter(t *testing.T) {
	for seed := range uint64(50) {
		r := rand.New(rand.NewPCG(seed, 2))
		b, err := Generate(testCatalog(30, 5), Config{GridSize: 5, MineCount: 24}, r)
		require.NoError(t, err)

		mines := 0
		for i, tile := range b.Tiles {
			if tile.IsMine {
				mines++
				assert.Nil(t, tile.Task)
			} else {
				assert.NotNil(t, tile.Task)
			}
			assert.Equal(t, i == b.Center(), tile.Visible)
		}
		assert.Equal(t, 24, mines)
		assert.False(t, b.Tiles[b.Center()].IsMine)
	}
}

func TestGenerateWithoutDuplicates(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b, err := Generate(testCatalog(25, 5), Config{GridSize: 5}, r)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, tile := range b.Tiles {
		require.NotNil(t, tile.Task)
		assert.False(t, seen[tile.Task.Name], "task %q dealt twice", tile.Task.Name)
		seen[tile.Task.Name] = true
	}
}

func TestGenerateWithDuplicates(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b, err := Generate(
		testCatalog(3, 5),
		Config{GridSize: 5, AllowDuplicates: true, DifficultyMode: RandomDifficulty},
		r,
	)
	require.NoError(t, err)
	for _, tile := range b.Tiles {
		assert.NotNil(t, tile.Task)
	}
}

func TestGenerateDistanceDifficulty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b, err := Generate(
		testCatalog(50, MaxDifficultyTier+1),
		Config{GridSize: 7, AllowDuplicates: true},
		r,
	)
	require.NoError(t, err)

	center := b.GridSize / 2
	for _, tile := range b.Tiles {
		want := min(absDiff(tile.Row, center)+absDiff(tile.Col, center), MaxDifficultyTier)
		assert.Equal(t, want, tile.Task.Difficulty, "tile %d:%d", tile.Row, tile.Col)
	}
}

func TestGenerateDoesNotShareTasks(t *testing.T) {
	catalog := testCatalog(9, 1)
	r := rand.New(rand.NewPCG(1, 2))
	b, err := Generate(catalog, Config{GridSize: 3}, r)
	require.NoError(t, err)

	*b.Tiles[0].Task.Value = 99
	for _, task := range catalog {
		assert.NotEqual(t, 99, *task.Value)
	}
}

func TestGenerateTeams(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b, err := Generate(testCatalog(9, 1), Config{
		GridSize:        3,
		Mode:            MultiClaim,
		PerTeamUnlocks:  true,
		FirstClaimBonus: 2,
		UnlockMode:      ManualUnlock,
		Teams:           testTeams(),
	}, r)
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, 1, b.ManualUnlockCount)
	assert.Equal(t, BonusPerMine, b.BonusPickRule)
	assert.ElementsMatch(t, []string{"Red", "Blue"}, b.Tiles[b.Center()].VisibleTeams)
	for i, tile := range b.Tiles {
		if i != b.Center() {
			assert.Empty(t, tile.VisibleTeams)
		}
	}
}

func TestGenerateSoloDropsTeamSettings(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b, err := Generate(testCatalog(9, 1), Config{
		GridSize:        3,
		PerTeamUnlocks:  true,
		FirstClaimBonus: 5,
		Teams:           testTeams(),
	}, r)
	require.NoError(t, err)

	assert.Equal(t, Solo, b.Mode)
	assert.Empty(t, b.Teams)
	assert.False(t, b.PerTeamUnlocks)
	assert.Zero(t, b.FirstClaimBonus)
}

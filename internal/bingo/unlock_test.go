package bingo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerTeamUnlockIsolation(t *testing.T) {
	b := withPerTeamUnlocks(newTestBoard(MultiClaim, 3))

	result, err := b.Play(4, red)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 5, 6, 7, 8}, result.Revealed)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, visibleSet(b, Scope{Team: "Red"}))
	assert.Equal(t, []int{4}, visibleSet(b, Scope{Team: "Blue"}))
	assert.Equal(t, []int{4}, visibleSet(b, GlobalScope))
	assert.Empty(t, b.Eligible(Scope{Team: "Blue"}))
}

func TestSharedTeamUnlock(t *testing.T) {
	b := newTestBoard(SingleClaim, 3)
	_, err := b.Play(4, red)
	require.NoError(t, err)

	// Without per-team unlocks any team may claim what another revealed.
	_, err = b.Claim(0, blue)
	require.NoError(t, err)
}

func TestEligibleIsDeduplicated(t *testing.T) {
	b := newTestBoard(Solo, 3)
	b.Tiles[3].Visible = true
	b.Tiles[3].Completed = true
	b.Tiles[4].Completed = true

	assert.Equal(t, []int{0, 1, 2, 5, 6, 7, 8}, b.Eligible(GlobalScope))
}

func TestManualUnlockBatchSize(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		visible  []int
		selected []int
		allowed  int
		err      error
	}{
		{
			name:     "over the allowance",
			count:    2,
			selected: []int{0, 1, 2},
			allowed:  2,
			err:      ErrTooManySelections,
		},
		{
			name:     "allowance capped by eligible",
			count:    5,
			visible:  []int{0, 1, 2, 3, 5, 6},
			selected: []int{7, 8, 0},
			allowed:  2,
			err:      ErrTooManySelections,
		},
		{
			name:     "duplicate pick",
			count:    2,
			selected: []int{0, 0},
			allowed:  2,
			err:      ErrDuplicateSelection,
		},
		{
			name:     "not eligible",
			count:    2,
			selected: []int{4},
			allowed:  2,
			err:      ErrNotEligible,
		},
		{
			name:     "within the allowance",
			count:    2,
			selected: []int{0, 8},
			allowed:  2,
		},
		{
			name:     "empty pick",
			count:    2,
			selected: []int{},
			allowed:  2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := newTestBoard(Solo, 3)
			b.UnlockMode = ManualUnlock
			b.ManualUnlockCount = test.count
			for _, i := range test.visible {
				b.Tiles[i].Visible = true
			}

			result, err := b.Play(4, SoloActor())
			require.NoError(t, err)
			p := result.Pending
			require.NotNil(t, p)
			assert.Equal(t, test.allowed, p.Allowed)

			before := b.Clone()
			_, err = p.Confirm(b, test.selected)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				assert.Equal(t, before, b)
				return
			}
			require.NoError(t, err)
			for _, i := range test.selected {
				assert.True(t, b.Tiles[i].Visible)
			}
		})
	}
}

func TestManualUnlockSuggestsWholeSmallBatch(t *testing.T) {
	b := newTestBoard(Solo, 3)
	b.UnlockMode = ManualUnlock
	b.ManualUnlockCount = 3
	for _, i := range []int{0, 1, 2, 3, 5, 6} {
		b.Tiles[i].Visible = true
	}

	result, err := b.Play(4, SoloActor())
	require.NoError(t, err)
	require.NotNil(t, result.Pending)
	assert.Equal(t, 2, result.Pending.Allowed)
	assert.Equal(t, []int{7, 8}, result.Pending.Suggested)
}

func TestManualUnlockNothingEligible(t *testing.T) {
	b := newTestBoard(Solo, 3)
	b.UnlockMode = ManualUnlock
	for i := range b.Tiles {
		b.Tiles[i].Visible = true
	}

	result, err := b.Play(4, SoloActor())
	require.NoError(t, err)
	assert.Nil(t, result.Pending)
}

func TestManualUnlockMineEarnsBonusPick(t *testing.T) {
	b := newTestBoard(Solo, 3, 0)
	b.UnlockMode = ManualUnlock
	b.ManualUnlockCount = 2
	b.MineDamage = 10

	result, err := b.Play(4, SoloActor())
	require.NoError(t, err)
	require.NotNil(t, result.Pending)
	assert.Equal(t, 1, b.SoloScore())

	unlock, err := result.Pending.Confirm(b, []int{0, 1})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, unlock.Revealed)
	assert.Equal(t, []int{0}, unlock.MinesHit)

	mine := b.Tiles[0]
	assert.True(t, mine.Visible)
	assert.True(t, mine.Completed)
	assert.Equal(t, -10, mine.Task.Points())

	assert.True(t, b.Tiles[1].Visible)
	assert.False(t, b.Tiles[1].Completed)
	assert.Equal(t, 1-10, b.SoloScore())
	assert.Equal(t, 0, b.MinesLeft(GlobalScope))

	next := unlock.Next
	require.NotNil(t, next)
	assert.True(t, next.Bonus)
	assert.Equal(t, 1, next.Allowed)
	assert.Equal(t, []int{2, 3, 5, 6, 7, 8}, next.Eligible)

	_, err = next.Confirm(b, []int{1})
	require.ErrorIs(t, err, ErrNotEligible)

	final, err := next.Confirm(b, []int{8})
	require.NoError(t, err)
	assert.Nil(t, final.Next)
	assert.True(t, b.Tiles[8].Visible)
}

func TestManualUnlockBonusCompounds(t *testing.T) {
	b := newTestBoard(Solo, 3, 0, 2)
	b.UnlockMode = ManualUnlock
	b.ManualUnlockCount = 2

	result, err := b.Play(4, SoloActor())
	require.NoError(t, err)

	unlock, err := result.Pending.Confirm(b, []int{0, 2})
	require.NoError(t, err)
	require.NotNil(t, unlock.Next)
	assert.Equal(t, 2, unlock.Next.Allowed)
}

func TestManualUnlockAllMinesRule(t *testing.T) {
	tests := []struct {
		name     string
		selected []int
		bonus    int
	}{
		{"only mines", []int{0}, 1},
		{"two mines", []int{0, 2}, 1},
		{"mixed", []int{0, 1}, 0},
		{"no mines", []int{1, 3}, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := newTestBoard(Solo, 3, 0, 2)
			b.UnlockMode = ManualUnlock
			b.ManualUnlockCount = 2
			b.BonusPickRule = BonusAllMines

			result, err := b.Play(4, SoloActor())
			require.NoError(t, err)
			unlock, err := result.Pending.Confirm(b, test.selected)
			require.NoError(t, err)

			if test.bonus == 0 {
				assert.Nil(t, unlock.Next)
				return
			}
			require.NotNil(t, unlock.Next)
			assert.Equal(t, test.bonus, unlock.Next.Allowed)
			assert.NotContains(t, unlock.Next.Eligible, test.selected[0])
		})
	}
}

func TestManualUnlockMineAlreadyClaimedByTeam(t *testing.T) {
	b := withPerTeamUnlocks(newTestBoard(MultiClaim, 3, 0))
	b.UnlockMode = ManualUnlock
	b.ManualUnlockCount = 1
	b.MineDamage = 4
	b.Tiles[0].VisibleTeams = []string{"Blue"}
	b.Tiles[0].ClaimedBy = []string{"Blue"}
	b.Tiles[0].Completed = true

	result, err := b.Play(4, red)
	require.NoError(t, err)
	require.NotNil(t, result.Pending)

	unlock, err := result.Pending.Confirm(b, []int{0})
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue", "Red"}, b.Tiles[0].ClaimedBy)
	assert.Equal(t, []int{0}, unlock.MinesHit)
	assert.Equal(t, 1-4, b.TeamScores()["Red"])
}

func TestManualUnlockMineOwnedOnSingleClaimBoard(t *testing.T) {
	b := withPerTeamUnlocks(newTestBoard(SingleClaim, 3, 0))
	b.UnlockMode = ManualUnlock
	b.ManualUnlockCount = 1
	b.MineDamage = 4
	b.Tiles[0].VisibleTeams = []string{"Blue"}
	b.Tiles[0].ClaimedBy = []string{"Blue"}
	b.Tiles[0].Completed = true

	result, err := b.Play(4, red)
	require.NoError(t, err)
	require.NotNil(t, result.Pending)
	require.Contains(t, result.Pending.Eligible, 0)

	unlock, err := result.Pending.Confirm(b, []int{0})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, unlock.Revealed)
	assert.Empty(t, unlock.MinesHit)
	assert.Nil(t, unlock.Next)
	assert.Equal(t, []string{"Blue"}, b.Tiles[0].ClaimedBy)
	assert.True(t, b.VisibleIn(0, b.ScopeOf(red)))
	assert.Equal(t, 1, b.TeamScores()["Red"])

	data, err := json.Marshal(b)
	require.NoError(t, err)
	var stored Board
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, b.TeamScores(), stored.TeamScores())
}

func TestManualUnlockSkipsTilesRevealedMeanwhile(t *testing.T) {
	b := newTestBoard(MultiClaim, 3)
	b.UnlockMode = ManualUnlock
	b.ManualUnlockCount = 2

	result, err := b.Play(4, red)
	require.NoError(t, err)
	require.NotNil(t, result.Pending)

	b.Tiles[0].Visible = true

	unlock, err := result.Pending.Confirm(b, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, unlock.Revealed)
	assert.Empty(t, unlock.MinesHit)
}

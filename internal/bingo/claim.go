package bingo

// Claim marks a visible tile as completed by the actor. Preconditions are
// checked in order: the index is on the board, the tile is visible in the
// actor's scope, the actor may claim, and the actor's identity has not
// claimed it yet. A failed claim leaves the board untouched.
func (b *Board) Claim(index int, a Actor) (*Tile, error) {
	if !b.InBounds(index) {
		return nil, ErrTileOutOfRange
	}
	if !b.VisibleIn(index, b.ScopeOf(a)) {
		return nil, ErrTileNotVisible
	}
	if b.Mode.Teams() && a.Role != RoleCaptain {
		return nil, ErrNotAuthorized
	}
	if b.ClaimedBy(index, a) {
		return nil, ErrAlreadyClaimed
	}
	if b.Mode == SingleClaim && len(b.Tiles[index].ClaimedBy) > 0 {
		return nil, ErrAlreadyClaimed
	}

	b.complete(index, a)
	return &b.Tiles[index], nil
}

// complete records the claim without checking preconditions. Mines get
// their value replaced by the penalty; every claimant of a mine pays it.
func (b *Board) complete(index int, a Actor) {
	t := &b.Tiles[index]
	t.Completed = true
	if b.Mode.Teams() {
		t.addClaimant(a.Team)
		if b.PerTeamUnlocks {
			t.addVisibleTeam(a.Team)
		}
	} else {
		t.Visible = true
	}
	if t.IsMine {
		if t.Task == nil {
			t.Task = &Task{}
		}
		t.Task.Value = IntValue(-b.MineDamage)
	}
}

type ClaimResult struct {
	Tile     *Tile
	Revealed []int
	Pending  *PendingUnlock
}

// Play runs a claim followed by the board's unlock strategy. In manual mode
// the result may carry a pending batch for the claimant to confirm.
func (b *Board) Play(index int, a Actor) (*ClaimResult, error) {
	tile, err := b.Claim(index, a)
	if err != nil {
		return nil, err
	}
	result := &ClaimResult{Tile: tile}
	if b.UnlockMode == ManualUnlock {
		result.Pending = b.BeginUnlock(a)
	} else {
		result.Revealed = b.AutoUnlock(b.ScopeOf(a))
	}
	return result, nil
}

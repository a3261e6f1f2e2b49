package bingo

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Eligible lists the tiles hidden in the scope that neighbor a tile
// completed in the same scope, in ascending index order.
func (b *Board) Eligible(s Scope) []int {
	seen := mapset.New[int]()
	eligible := make([]int, 0)
	for i := range b.Tiles {
		if !b.CompletedIn(i, s) {
			continue
		}
		for _, n := range b.neighbors(i) {
			if seen.Has(n) || b.VisibleIn(n, s) {
				continue
			}
			seen.Put(n)
			eligible = append(eligible, n)
		}
	}
	slices.Sort(eligible)
	return eligible
}

// AutoUnlock reveals every hidden neighbor of every completed tile in the
// scope and returns the newly visible indices. Running it again without an
// intervening claim reveals nothing.
func (b *Board) AutoUnlock(s Scope) []int {
	revealed := b.Eligible(s)
	for _, i := range revealed {
		b.reveal(i, s)
	}
	return revealed
}

// PendingUnlock is a manual unlock batch waiting for the claimant's picks.
type PendingUnlock struct {
	Actor     Actor
	Scope     Scope
	Allowed   int
	Eligible  []int
	Suggested []int
	Bonus     bool
}

func newPendingUnlock(a Actor, s Scope, allowed int, eligible []int, bonus bool) *PendingUnlock {
	if len(eligible) == 0 || allowed < 1 {
		return nil
	}
	p := &PendingUnlock{
		Actor:    a,
		Scope:    s,
		Allowed:  min(allowed, len(eligible)),
		Eligible: eligible,
		Bonus:    bonus,
	}
	if len(eligible) <= p.Allowed {
		p.Suggested = slices.Clone(eligible)
	}
	return p
}

// BeginUnlock opens the manual batch that follows a claim. It returns nil
// when nothing is eligible, in which case the claim is final.
func (b *Board) BeginUnlock(a Actor) *PendingUnlock {
	s := b.ScopeOf(a)
	return newPendingUnlock(a, s, b.unlockAllowance(), b.Eligible(s), false)
}

type UnlockResult struct {
	Revealed []int
	MinesHit []int
	Next     *PendingUnlock
}

func (p *PendingUnlock) Validate(selected []int) error {
	if len(selected) > p.Allowed {
		return ErrTooManySelections
	}
	seen := make(map[int]bool, len(selected))
	for _, i := range selected {
		if seen[i] {
			return ErrDuplicateSelection
		}
		seen[i] = true
		if !slices.Contains(p.Eligible, i) {
			return ErrNotEligible
		}
	}
	return nil
}

// Confirm reveals the selected tiles in the batch's scope. Revealed mines
// are completed for the acting identity at once and earn bonus picks from
// what remains of the eligible set; Next carries that follow-up batch.
// On single-claim boards a mine another team already owns is only
// revealed. Revealed lists only tiles that were hidden until now.
func (p *PendingUnlock) Confirm(b *Board, selected []int) (*UnlockResult, error) {
	if err := p.Validate(selected); err != nil {
		return nil, err
	}

	result := &UnlockResult{}
	for _, i := range selected {
		if b.reveal(i, p.Scope) {
			result.Revealed = append(result.Revealed, i)
		}
		t := &b.Tiles[i]
		if !t.IsMine {
			continue
		}
		if b.Mode == SingleClaim && len(t.ClaimedBy) > 0 && !b.ClaimedBy(i, p.Actor) {
			continue
		}
		if !b.ClaimedBy(i, p.Actor) {
			b.complete(i, p.Actor)
		}
		result.MinesHit = append(result.MinesHit, i)
	}

	bonus := len(result.MinesHit)
	if b.bonusRule() == BonusAllMines {
		bonus = 0
		if len(selected) > 0 && len(result.MinesHit) == len(selected) {
			bonus = 1
		}
	}

	remaining := make([]int, 0, len(p.Eligible))
	for _, i := range p.Eligible {
		if !slices.Contains(selected, i) && !b.VisibleIn(i, p.Scope) {
			remaining = append(remaining, i)
		}
	}
	result.Next = newPendingUnlock(p.Actor, p.Scope, bonus, remaining, true)
	return result, nil
}

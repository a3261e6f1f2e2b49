package bingo

// Actor is whoever performs a claim. Solo players carry no team.
type Actor struct {
	Team string
	Role Role
}

func SoloActor() Actor {
	return Actor{Role: RolePlayer}
}

// Scope is the visibility partition a tile is evaluated in: the whole board,
// or a single team's fog of war.
type Scope struct {
	Team string
}

var GlobalScope = Scope{}

func (s Scope) Global() bool {
	return s.Team == ""
}

func (b *Board) ScopeOf(a Actor) Scope {
	if b.Mode.Teams() && b.PerTeamUnlocks {
		return Scope{Team: a.Team}
	}
	return GlobalScope
}

func (b *Board) VisibleIn(index int, s Scope) bool {
	t := &b.Tiles[index]
	if s.Global() {
		return t.Visible
	}
	return t.VisibleToTeam(s.Team)
}

// CompletedIn reports whether the tile counts as done for unlock purposes.
func (b *Board) CompletedIn(index int, s Scope) bool {
	t := &b.Tiles[index]
	if !s.Global() {
		return t.ClaimedByTeam(s.Team)
	}
	if b.Mode.Teams() {
		return len(t.ClaimedBy) > 0
	}
	return t.Completed
}

// ClaimedBy reports whether the actor's identity has completed the tile.
func (b *Board) ClaimedBy(index int, a Actor) bool {
	t := &b.Tiles[index]
	if b.Mode.Teams() {
		return t.ClaimedByTeam(a.Team)
	}
	return t.Completed
}

func (b *Board) reveal(index int, s Scope) bool {
	if b.VisibleIn(index, s) {
		return false
	}
	t := &b.Tiles[index]
	if s.Global() {
		t.Visible = true
	} else {
		t.addVisibleTeam(s.Team)
	}
	return true
}

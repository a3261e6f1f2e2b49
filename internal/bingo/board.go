package bingo

import (
	"slices"
	"time"
)

type Mode string

const (
	Solo        Mode = "individual"
	SingleClaim Mode = "teams"
	MultiClaim  Mode = "multi-claim"
)

func (m Mode) Valid() bool {
	return m == Solo || m == SingleClaim || m == MultiClaim
}

func (m Mode) Teams() bool {
	return m == SingleClaim || m == MultiClaim
}

type NeighborMode string

const (
	Orthogonal NeighborMode = "4"
	Surrounding NeighborMode = "8"
)

type UnlockMode string

const (
	AutoUnlock   UnlockMode = "auto"
	ManualUnlock UnlockMode = "manual"
)

type DifficultyMode string

const (
	DistanceDifficulty DifficultyMode = "distance"
	RandomDifficulty   DifficultyMode = "random"
)

// BonusPickRule decides how many extra picks a manual unlock batch earns
// after revealing mines.
type BonusPickRule string

const (
	BonusPerMine  BonusPickRule = "per-mine"
	BonusAllMines BonusPickRule = "all-mines"
)

type Role string

const (
	RolePlayer  Role = "player"
	RoleCaptain Role = "captain"
	RoleMember  Role = "member"
)

type Task struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
	Value       *int   `json:"value"`
}

// Points is the score contribution of the task. Tasks without a value
// count as one point.
func (t *Task) Points() int {
	if t == nil || t.Value == nil {
		return 1
	}
	return *t.Value
}

func (t *Task) clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Value != nil {
		v := *t.Value
		c.Value = &v
	}
	return &c
}

func IntValue(v int) *int {
	return &v
}

type Team struct {
	Name               string `json:"name"`
	Color              string `json:"color"`
	PasswordHash       string `json:"passwordHash"`
	MemberPasswordHash string `json:"memberPasswordHash"`
}

// Tile keeps one representation for every mode. Solo boards use Visible
// and Completed; team boards additionally track claimants in claim order,
// and per-team visibility in VisibleTeams when the board has
// PerTeamUnlocks.
type Tile struct {
	Row          int
	Col          int
	Task         *Task
	IsMine       bool
	Visible      bool
	Completed    bool
	VisibleTeams []string
	ClaimedBy    []string
}

func (t *Tile) ClaimedByTeam(team string) bool {
	return slices.Contains(t.ClaimedBy, team)
}

func (t *Tile) VisibleToTeam(team string) bool {
	return slices.Contains(t.VisibleTeams, team)
}

// FirstClaimer returns the team whose claim was recorded first.
func (t *Tile) FirstClaimer() (string, bool) {
	if len(t.ClaimedBy) == 0 {
		return "", false
	}
	return t.ClaimedBy[0], true
}

func (t *Tile) addClaimant(team string) {
	if !t.ClaimedByTeam(team) {
		t.ClaimedBy = append(t.ClaimedBy, team)
	}
}

func (t *Tile) addVisibleTeam(team string) {
	if !t.VisibleToTeam(team) {
		t.VisibleTeams = append(t.VisibleTeams, team)
	}
}

type Board struct {
	ID                string
	Mode              Mode
	GridSize          int
	NeighborMode      NeighborMode
	UnlockMode        UnlockMode
	ManualUnlockCount int
	PerTeamUnlocks    bool
	FirstClaimBonus   int
	MineCount         int
	MineDamage        int
	DifficultyMode    DifficultyMode
	BonusPickRule     BonusPickRule
	BoardPasswordHash string
	Teams             []Team
	Tiles             []Tile
	CreatedAt         time.Time
	LastUpdated       time.Time
}

func (b *Board) Center() int {
	c := b.GridSize / 2
	return c*b.GridSize + c
}

func (b *Board) InBounds(index int) bool {
	return 0 <= index && index < len(b.Tiles)
}

func (b *Board) Team(name string) (*Team, bool) {
	for i := range b.Teams {
		if b.Teams[i].Name == name {
			return &b.Teams[i], true
		}
	}
	return nil, false
}

func (b *Board) Touch(now time.Time) {
	b.LastUpdated = now.UTC()
}

// Clone returns a deep copy, so that a transaction can be applied to a
// snapshot without disturbing the original.
func (b *Board) Clone() *Board {
	c := *b
	c.Teams = slices.Clone(b.Teams)
	c.Tiles = make([]Tile, len(b.Tiles))
	for i, t := range b.Tiles {
		t.Task = t.Task.clone()
		t.VisibleTeams = slices.Clone(t.VisibleTeams)
		t.ClaimedBy = slices.Clone(t.ClaimedBy)
		c.Tiles[i] = t
	}
	return &c
}

func (b *Board) unlockAllowance() int {
	if b.ManualUnlockCount < 1 {
		return 1
	}
	return b.ManualUnlockCount
}

func (b *Board) bonusRule() BonusPickRule {
	if b.BonusPickRule == "" {
		return BonusPerMine
	}
	return b.BonusPickRule
}

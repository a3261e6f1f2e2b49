package bingo

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinGridSize       = 3
	MaxGridSize       = 15
	MaxDifficultyTier = 4
	MinTeams          = 2
)

type Config struct {
	GridSize          int
	Mode              Mode
	NeighborMode      NeighborMode
	UnlockMode        UnlockMode
	ManualUnlockCount int
	MineCount         int
	MineDamage        int
	PerTeamUnlocks    bool
	FirstClaimBonus   int
	AllowDuplicates   bool
	DifficultyMode    DifficultyMode
	BonusPickRule     BonusPickRule
	BoardPasswordHash string
	Teams             []Team
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = Solo
	}
	if c.NeighborMode == "" {
		c.NeighborMode = Surrounding
	}
	if c.UnlockMode == "" {
		c.UnlockMode = AutoUnlock
	}
	if c.DifficultyMode == "" {
		c.DifficultyMode = DistanceDifficulty
	}
	if c.BonusPickRule == "" {
		c.BonusPickRule = BonusPerMine
	}
	if c.UnlockMode == ManualUnlock && c.ManualUnlockCount == 0 {
		c.ManualUnlockCount = 1
	}
	if !c.Mode.Teams() {
		c.Teams = nil
		c.PerTeamUnlocks = false
		c.FirstClaimBonus = 0
	}
}

// Validate checks the configuration against a catalog of the given size.
// Defaults are filled in first.
func (c *Config) Validate(catalogSize int) error {
	c.applyDefaults()

	if c.GridSize < MinGridSize || c.GridSize > MaxGridSize {
		return ErrInvalidGridSize
	}
	if catalogSize == 0 {
		return ErrEmptyCatalog
	}
	cells := c.GridSize * c.GridSize
	if c.MineCount < 0 || c.MineCount >= cells {
		return ErrInvalidMineCount
	}
	if !c.AllowDuplicates && catalogSize+c.MineCount < cells {
		return ErrInsufficientTasks
	}

	switch {
	case !c.Mode.Valid():
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	case c.NeighborMode != Orthogonal && c.NeighborMode != Surrounding:
		return fmt.Errorf("%w: unknown neighbor mode %q", ErrInvalidConfig, c.NeighborMode)
	case c.UnlockMode != AutoUnlock && c.UnlockMode != ManualUnlock:
		return fmt.Errorf("%w: unknown unlock mode %q", ErrInvalidConfig, c.UnlockMode)
	case c.DifficultyMode != DistanceDifficulty && c.DifficultyMode != RandomDifficulty:
		return fmt.Errorf("%w: unknown difficulty mode %q", ErrInvalidConfig, c.DifficultyMode)
	case c.BonusPickRule != BonusPerMine && c.BonusPickRule != BonusAllMines:
		return fmt.Errorf("%w: unknown bonus pick rule %q", ErrInvalidConfig, c.BonusPickRule)
	case c.ManualUnlockCount < 0:
		return fmt.Errorf("%w: manual unlock count must be positive", ErrInvalidConfig)
	case c.MineDamage < 0:
		return fmt.Errorf("%w: mine damage must not be negative", ErrInvalidConfig)
	case c.FirstClaimBonus < 0:
		return fmt.Errorf("%w: first claim bonus must not be negative", ErrInvalidConfig)
	}

	if c.Mode.Teams() {
		return validateTeams(c.Teams)
	}
	return nil
}

func validateTeams(teams []Team) error {
	if len(teams) < MinTeams {
		return fmt.Errorf("%w: at least %d teams required", ErrInvalidTeams, MinTeams)
	}
	seen := make(map[string]bool, len(teams))
	for _, t := range teams {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("%w: team name must not be empty", ErrInvalidTeams)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate team name %q", ErrInvalidTeams, name)
		}
		seen[name] = true
		if t.PasswordHash == "" || t.MemberPasswordHash == "" {
			return fmt.Errorf("%w: team %q needs both passwords", ErrInvalidTeams, name)
		}
		if t.PasswordHash == t.MemberPasswordHash {
			return fmt.Errorf(
				"%w: captain and member passwords must differ for team %q",
				ErrInvalidTeams, name,
			)
		}
	}
	return nil
}

// Generate builds a fresh board. Only the center tile starts visible and
// it never holds a mine.
func Generate(catalog []Task, cfg Config, r *rand.Rand) (*Board, error) {
	if err := cfg.Validate(len(catalog)); err != nil {
		return nil, err
	}

	size := cfg.GridSize
	center := size / 2
	centerIndex := center*size + center

	/*
	 * Pick the mines off a candidate list that excludes the center.
	 */
	mines := make([]bool, size*size)
	{
		candidates := make([]int, 0, size*size-1)
		for i := range size * size {
			if i != centerIndex {
				candidates = append(candidates, i)
			}
		}
		k := len(candidates)
		for range cfg.MineCount {
			i := r.IntN(k)
			mines[candidates[i]] = true
			k--
			candidates[i] = candidates[k]
		}
	}

	teams := make([]Team, len(cfg.Teams))
	teamNames := make([]string, len(cfg.Teams))
	for i, t := range cfg.Teams {
		t.Name = strings.TrimSpace(t.Name)
		teams[i] = t
		teamNames[i] = t.Name
	}

	d := newDealer(catalog, cfg.AllowDuplicates, r)
	tiles := make([]Tile, size*size)
	for row := range size {
		for col := range size {
			i := row*size + col
			tile := Tile{Row: row, Col: col, IsMine: mines[i]}
			if !tile.IsMine {
				var task Task
				if cfg.DifficultyMode == DistanceDifficulty {
					tier := min(absDiff(row, center)+absDiff(col, center), MaxDifficultyTier)
					task = d.tier(tier)
				} else {
					task = d.next()
				}
				tile.Task = task.clone()
			}
			if i == centerIndex {
				tile.Visible = true
				if cfg.PerTeamUnlocks {
					tile.VisibleTeams = append([]string(nil), teamNames...)
				}
			}
			tiles[i] = tile
		}
	}

	now := time.Now().UTC()
	board := &Board{
		ID:                uuid.NewString(),
		Mode:              cfg.Mode,
		GridSize:          size,
		NeighborMode:      cfg.NeighborMode,
		UnlockMode:        cfg.UnlockMode,
		ManualUnlockCount: cfg.ManualUnlockCount,
		PerTeamUnlocks:    cfg.PerTeamUnlocks,
		FirstClaimBonus:   cfg.FirstClaimBonus,
		MineCount:         cfg.MineCount,
		MineDamage:        cfg.MineDamage,
		DifficultyMode:    cfg.DifficultyMode,
		BonusPickRule:     cfg.BonusPickRule,
		BoardPasswordHash: cfg.BoardPasswordHash,
		Teams:             teams,
		Tiles:             tiles,
		CreatedAt:         now,
		LastUpdated:       now,
	}
	return board, nil
}

// dealer hands out catalog entries. Without duplicates every entry is dealt
// at most once; with duplicates the shuffled catalog is repeated.
type dealer struct {
	catalog    []Task
	pool       []Task
	duplicates bool
	r          *rand.Rand
}

func newDealer(catalog []Task, duplicates bool, r *rand.Rand) *dealer {
	d := &dealer{catalog: catalog, duplicates: duplicates, r: r}
	d.refill()
	return d
}

func (d *dealer) refill() {
	d.pool = append(d.pool, d.catalog...)
	tail := d.pool[len(d.pool)-len(d.catalog):]
	d.r.Shuffle(len(tail), func(i, j int) {
		tail[i], tail[j] = tail[j], tail[i]
	})
}

func (d *dealer) next() Task {
	if len(d.pool) == 0 {
		d.refill()
	}
	t := d.pool[0]
	d.pool = d.pool[1:]
	return t
}

// tier draws uniformly among entries of the given difficulty, falling back
// to the next shuffled entry when the tier is empty.
func (d *dealer) tier(difficulty int) Task {
	source := d.pool
	if d.duplicates {
		source = d.catalog
	}
	matches := make([]int, 0, len(source))
	for i, t := range source {
		if t.Difficulty == difficulty {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return d.next()
	}
	i := matches[d.r.IntN(len(matches))]
	t := source[i]
	if !d.duplicates {
		d.pool = append(d.pool[:i], d.pool[i+1:]...)
	}
	return t
}

package bingo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const defaultGridSize = 5

// The stored document keeps the historical field shapes: claimedBy is
// absent on solo boards, a team name or null on single-claim boards and a
// list on multi-claim boards; visibleTeams only exists with per-team
// unlocks. Decoding accepts any of the shapes on any board.

type boardDoc struct {
	CardID            string         `json:"cardId"`
	Mode              Mode           `json:"mode"`
	GridSize          int            `json:"gridSize,omitempty"`
	BoardSize         int            `json:"boardSize,omitempty"`
	UnlockMode        UnlockMode     `json:"unlockMode"`
	NeighborMode      NeighborMode   `json:"neighborMode"`
	ManualUnlockCount *int           `json:"manualUnlockCount"`
	MineCount         int            `json:"mineCount"`
	MineDamage        int            `json:"mineDamage"`
	PerTeamUnlocks    bool           `json:"perTeamUnlocks"`
	FirstClaimBonus   int            `json:"firstClaimBonus"`
	DifficultyMode    DifficultyMode `json:"difficultyMode,omitempty"`
	BonusPickRule     BonusPickRule  `json:"bonusPickRule,omitempty"`
	BoardPasswordHash *string        `json:"boardPasswordHash"`
	Teams             []Team         `json:"teams"`
	Tiles             []tileDoc      `json:"tiles"`
	CreatedAt         timestamp      `json:"createdAt"`
	LastUpdated       timestamp      `json:"lastUpdated"`
}

type tileDoc struct {
	Row          int             `json:"row"`
	Col          int             `json:"col"`
	Task         *Task           `json:"task"`
	IsMine       bool            `json:"isMine"`
	Completed    bool            `json:"completed"`
	Visible      bool            `json:"visible"`
	VisibleTeams *[]string       `json:"visibleTeams,omitempty"`
	ClaimedBy    json.RawMessage `json:"claimedBy,omitempty"`
}

func (b Board) MarshalJSON() ([]byte, error) {
	doc := boardDoc{
		CardID:          b.ID,
		Mode:            b.Mode,
		GridSize:        b.GridSize,
		BoardSize:       b.GridSize,
		UnlockMode:      b.UnlockMode,
		NeighborMode:    b.NeighborMode,
		MineCount:       b.MineCount,
		MineDamage:      b.MineDamage,
		PerTeamUnlocks:  b.PerTeamUnlocks,
		FirstClaimBonus: b.FirstClaimBonus,
		DifficultyMode:  b.DifficultyMode,
		BonusPickRule:   b.BonusPickRule,
		Teams:           b.Teams,
		Tiles:           make([]tileDoc, len(b.Tiles)),
		CreatedAt:       timestamp(b.CreatedAt),
		LastUpdated:     timestamp(b.LastUpdated),
	}
	if doc.Teams == nil {
		doc.Teams = []Team{}
	}
	if b.UnlockMode == ManualUnlock {
		doc.ManualUnlockCount = &b.ManualUnlockCount
	}
	if b.BoardPasswordHash != "" {
		doc.BoardPasswordHash = &b.BoardPasswordHash
	}

	for i, t := range b.Tiles {
		td := tileDoc{
			Row:       t.Row,
			Col:       t.Col,
			Task:      t.Task,
			IsMine:    t.IsMine,
			Completed: t.Completed,
			Visible:   t.Visible,
		}
		if b.PerTeamUnlocks {
			teams := append([]string{}, t.VisibleTeams...)
			td.VisibleTeams = &teams
		}
		var err error
		switch b.Mode {
		case SingleClaim:
			var owner *string
			if first, ok := t.FirstClaimer(); ok {
				owner = &first
			}
			td.ClaimedBy, err = json.Marshal(owner)
		case MultiClaim:
			td.ClaimedBy, err = json.Marshal(append([]string{}, t.ClaimedBy...))
		}
		if err != nil {
			return nil, err
		}
		doc.Tiles[i] = td
	}

	return json.Marshal(doc)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var doc boardDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*b = Board{
		ID:              doc.CardID,
		Mode:            doc.Mode,
		GridSize:        doc.GridSize,
		NeighborMode:    doc.NeighborMode,
		UnlockMode:      doc.UnlockMode,
		PerTeamUnlocks:  doc.PerTeamUnlocks,
		FirstClaimBonus: doc.FirstClaimBonus,
		MineCount:       doc.MineCount,
		MineDamage:      doc.MineDamage,
		DifficultyMode:  doc.DifficultyMode,
		BonusPickRule:   doc.BonusPickRule,
		Teams:           doc.Teams,
		Tiles:           make([]Tile, len(doc.Tiles)),
		CreatedAt:       time.Time(doc.CreatedAt),
		LastUpdated:     time.Time(doc.LastUpdated),
	}
	if b.GridSize == 0 {
		b.GridSize = doc.BoardSize
	}
	if b.GridSize == 0 {
		b.GridSize = defaultGridSize
	}
	if b.Mode == "" {
		b.Mode = Solo
	}
	if b.UnlockMode == "" {
		b.UnlockMode = AutoUnlock
	}
	if b.NeighborMode == "" {
		b.NeighborMode = Surrounding
	}
	if doc.ManualUnlockCount != nil {
		b.ManualUnlockCount = *doc.ManualUnlockCount
	}
	if doc.BoardPasswordHash != nil {
		b.BoardPasswordHash = *doc.BoardPasswordHash
	}

	for i, td := range doc.Tiles {
		claimedBy, err := decodeClaimedBy(td.ClaimedBy)
		if err != nil {
			return fmt.Errorf("tile %d: %w", i, err)
		}
		t := Tile{
			Row:       td.Row,
			Col:       td.Col,
			Task:      td.Task,
			IsMine:    td.IsMine,
			Completed: td.Completed,
			Visible:   td.Visible,
			ClaimedBy: claimedBy,
		}
		if td.VisibleTeams != nil && len(*td.VisibleTeams) > 0 {
			t.VisibleTeams = *td.VisibleTeams
		}
		b.Tiles[i] = t
	}

	if len(b.Tiles) != b.GridSize*b.GridSize {
		return fmt.Errorf(
			"board %s has %d tiles, want %d", b.ID, len(b.Tiles), b.GridSize*b.GridSize,
		)
	}
	return nil
}

func decodeClaimedBy(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, err
		}
		if name == "" {
			return nil, nil
		}
		return []string{name}, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("claimedBy must be a team name or a list: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}
	return names, nil
}

func (m *NeighborMode) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case nil:
		*m = ""
	case float64:
		*m = NeighborMode(fmt.Sprint(int(value)))
	case string:
		*m = NeighborMode(value)
	default:
		return fmt.Errorf("invalid neighbor mode %s", data)
	}
	return nil
}

// UnmarshalJSON accepts tasks whose value is missing or not a number; such
// tasks score the default single point.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Difficulty  json.RawMessage `json:"difficulty"`
		Value       json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task{Name: raw.Name, Description: raw.Description}
	if n, ok := number(raw.Difficulty); ok {
		t.Difficulty = n
	}
	if n, ok := number(raw.Value); ok {
		t.Value = &n
	}
	return nil
}

func number(raw json.RawMessage) (int, bool) {
	var f float64
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	return int(f), true
}

type timestamp time.Time

func (ts timestamp) MarshalJSON() ([]byte, error) {
	t := time.Time(ts)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON ignores timestamps it cannot read, such as server-side
// timestamp objects written by other clients.
func (ts *timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) != nil {
		*ts = timestamp{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		*ts = timestamp{}
		return nil
	}
	*ts = timestamp(t)
	return nil
}

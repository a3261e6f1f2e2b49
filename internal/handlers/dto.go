package handlers

import (
	"fmt"
	"strings"

	"github.com/vancomm/taskbingo-server/internal/bingo"
	"github.com/vancomm/taskbingo-server/internal/hashing"
	"github.com/vancomm/taskbingo-server/internal/session"
)

type TeamDTO struct {
	Name           string `json:"name"`
	Color          string `json:"color"`
	Password       string `json:"password"`
	MemberPassword string `json:"memberPassword"`
}

// CreateBoardDTO is the body of a board creation request. Passwords come
// in plain and are hashed before the board is generated; tasks, when
// present, replace the shared catalog for this board.
type CreateBoardDTO struct {
	GridSize          int                  `json:"gridSize"`
	Mode              bingo.Mode           `json:"mode"`
	NeighborMode      bingo.NeighborMode   `json:"neighborMode"`
	UnlockMode        bingo.UnlockMode     `json:"unlockMode"`
	ManualUnlockCount int                  `json:"manualUnlockCount"`
	MineCount         int                  `json:"mineCount"`
	MineDamage        int                  `json:"mineDamage"`
	PerTeamUnlocks    bool                 `json:"perTeamUnlocks"`
	FirstClaimBonus   int                  `json:"firstClaimBonus"`
	AllowDuplicates   bool                 `json:"allowDuplicates"`
	DifficultyMode    bingo.DifficultyMode `json:"difficultyMode"`
	BonusPickRule     bingo.BonusPickRule  `json:"bonusPickRule"`
	BoardPassword     string               `json:"boardPassword"`
	Teams             []TeamDTO            `json:"teams"`
	Tasks             []bingo.Task         `json:"tasks"`
}

func (d CreateBoardDTO) Config(scheme hashing.Scheme) (bingo.Config, error) {
	cfg := bingo.Config{
		GridSize:          d.GridSize,
		Mode:              d.Mode,
		NeighborMode:      d.NeighborMode,
		UnlockMode:        d.UnlockMode,
		ManualUnlockCount: d.ManualUnlockCount,
		MineCount:         d.MineCount,
		MineDamage:        d.MineDamage,
		PerTeamUnlocks:    d.PerTeamUnlocks,
		FirstClaimBonus:   d.FirstClaimBonus,
		AllowDuplicates:   d.AllowDuplicates,
		DifficultyMode:    d.DifficultyMode,
		BonusPickRule:     d.BonusPickRule,
	}

	if d.BoardPassword != "" {
		hash, err := hashing.Hash(scheme, d.BoardPassword)
		if err != nil {
			return cfg, err
		}
		cfg.BoardPasswordHash = hash
	}

	for _, t := range d.Teams {
		if strings.TrimSpace(t.Password) == "" || strings.TrimSpace(t.MemberPassword) == "" {
			return cfg, fmt.Errorf("%w: team %q needs both passwords", bingo.ErrInvalidTeams, t.Name)
		}
		if t.Password == t.MemberPassword {
			return cfg, fmt.Errorf(
				"%w: captain and member passwords must differ for team %q",
				bingo.ErrInvalidTeams, t.Name,
			)
		}
		captain, err := hashing.Hash(scheme, t.Password)
		if err != nil {
			return cfg, err
		}
		member, err := hashing.Hash(scheme, t.MemberPassword)
		if err != nil {
			return cfg, err
		}
		cfg.Teams = append(cfg.Teams, bingo.Team{
			Name:               t.Name,
			Color:              t.Color,
			PasswordHash:       captain,
			MemberPasswordHash: member,
		})
	}
	return cfg, nil
}

type LoginDTO struct {
	Team     string `schema:"team"`
	Password string `schema:"password"`
}

type ClaimDTO struct {
	Tile int `schema:"tile,required"`
}

type UnlockDTO struct {
	Tiles []int `schema:"tile"`
}

type TeamView struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TileView struct {
	Index     int         `json:"index"`
	Row       int         `json:"row"`
	Col       int         `json:"col"`
	Visible   bool        `json:"visible"`
	Completed bool        `json:"completed"`
	IsMine    bool        `json:"isMine,omitempty"`
	Task      *bingo.Task `json:"task,omitempty"`
	ClaimedBy []string    `json:"claimedBy,omitempty"`
}

type ViewerDTO struct {
	Team string `json:"team,omitempty"`
	Role string `json:"role"`
}

// BoardView is a board as one viewer sees it. Tiles hidden from the
// viewer's scope carry no task, mine flag or claimants, and password
// hashes never leave the server.
type BoardView struct {
	CardId            string               `json:"cardId"`
	Version           int64                `json:"version"`
	Mode              bingo.Mode           `json:"mode"`
	GridSize          int                  `json:"gridSize"`
	NeighborMode      bingo.NeighborMode   `json:"neighborMode"`
	UnlockMode        bingo.UnlockMode     `json:"unlockMode"`
	ManualUnlockCount int                  `json:"manualUnlockCount,omitempty"`
	PerTeamUnlocks    bool                 `json:"perTeamUnlocks"`
	FirstClaimBonus   int                  `json:"firstClaimBonus"`
	MineCount         int                  `json:"mineCount"`
	MineDamage        int                  `json:"mineDamage"`
	MinesLeft         int                  `json:"minesLeft"`
	DifficultyMode    bingo.DifficultyMode `json:"difficultyMode"`
	BonusPickRule     bingo.BonusPickRule  `json:"bonusPickRule"`
	PasswordProtected bool                 `json:"passwordProtected"`
	Teams             []TeamView           `json:"teams"`
	Tiles             []TileView           `json:"tiles"`
	Scores            bingo.Scores         `json:"scores"`
	Viewer            *ViewerDTO           `json:"viewer,omitempty"`
	CreatedAt         int64                `json:"createdAt"`
	LastUpdated       int64                `json:"lastUpdated"`
}

func NewBoardView(b *bingo.Board, version int64, viewer *bingo.Actor) *BoardView {
	scope := bingo.GlobalScope
	var viewerDTO *ViewerDTO
	if viewer != nil {
		scope = b.ScopeOf(*viewer)
		viewerDTO = &ViewerDTO{Team: viewer.Team, Role: string(viewer.Role)}
	}

	teams := make([]TeamView, 0, len(b.Teams))
	for _, t := range b.Teams {
		teams = append(teams, TeamView{Name: t.Name, Color: t.Color})
	}

	tiles := make([]TileView, len(b.Tiles))
	for i := range b.Tiles {
		t := &b.Tiles[i]
		view := TileView{
			Index:     i,
			Row:       t.Row,
			Col:       t.Col,
			Visible:   b.VisibleIn(i, scope),
			Completed: b.CompletedIn(i, scope),
		}
		if view.Visible || view.Completed {
			view.IsMine = t.IsMine
			view.Task = t.Task
			if b.Mode.Teams() {
				view.ClaimedBy = t.ClaimedBy
			}
		}
		tiles[i] = view
	}

	manualUnlockCount := 0
	if b.UnlockMode == bingo.ManualUnlock {
		manualUnlockCount = b.ManualUnlockCount
	}

	return &BoardView{
		CardId:            b.ID,
		Version:           version,
		Mode:              b.Mode,
		GridSize:          b.GridSize,
		NeighborMode:      b.NeighborMode,
		UnlockMode:        b.UnlockMode,
		ManualUnlockCount: manualUnlockCount,
		PerTeamUnlocks:    b.PerTeamUnlocks,
		FirstClaimBonus:   b.FirstClaimBonus,
		MineCount:         b.MineCount,
		MineDamage:        b.MineDamage,
		MinesLeft:         b.MinesLeft(scope),
		DifficultyMode:    b.DifficultyMode,
		BonusPickRule:     b.BonusPickRule,
		PasswordProtected: b.BoardPasswordHash != "",
		Teams:             teams,
		Tiles:             tiles,
		Scores:            b.Scores(),
		Viewer:            viewerDTO,
		CreatedAt:         b.CreatedAt.UnixMilli(),
		LastUpdated:       b.LastUpdated.UnixMilli(),
	}
}

type ScoresDTO struct {
	Scores    bingo.Scores `json:"scores"`
	MinesLeft int          `json:"minesLeft"`
}

type PendingDTO struct {
	Allowed   int   `json:"allowed"`
	Eligible  []int `json:"eligible"`
	Suggested []int `json:"suggested,omitempty"`
	Bonus     bool  `json:"bonus"`
}

func NewPendingDTO(p *bingo.PendingUnlock) *PendingDTO {
	if p == nil {
		return nil
	}
	return &PendingDTO{
		Allowed:   p.Allowed,
		Eligible:  p.Eligible,
		Suggested: p.Suggested,
		Bonus:     p.Bonus,
	}
}

type SessionDTO struct {
	SessionId string      `json:"sessionId"`
	CardId    string      `json:"cardId"`
	Team      string      `json:"team,omitempty"`
	Role      string      `json:"role"`
	Phase     string      `json:"phase"`
	StartedAt int64       `json:"startedAt"`
	Pending   *PendingDTO `json:"pending,omitempty"`
}

func NewSessionDTO(info session.Info) *SessionDTO {
	return &SessionDTO{
		SessionId: info.ID,
		CardId:    info.CardID,
		Team:      info.Actor.Team,
		Role:      string(info.Actor.Role),
		Phase:     info.Phase.String(),
		StartedAt: info.StartedAt.UnixMilli(),
		Pending:   NewPendingDTO(info.Pending),
	}
}

type OutcomeDTO struct {
	Board    *BoardView  `json:"board"`
	Session  *SessionDTO `json:"session"`
	Tile     *int        `json:"tile,omitempty"`
	Revealed []int       `json:"revealed"`
	MinesHit []int       `json:"minesHit"`
	Pending  *PendingDTO `json:"pending,omitempty"`
}

func NewOutcomeDTO(out *session.Outcome) *OutcomeDTO {
	actor := out.Session.Actor
	dto := &OutcomeDTO{
		Board:    NewBoardView(out.Board, out.Version, &actor),
		Session:  NewSessionDTO(out.Session),
		Revealed: out.Revealed,
		MinesHit: out.MinesHit,
		Pending:  NewPendingDTO(out.Pending),
	}
	if dto.Revealed == nil {
		dto.Revealed = []int{}
	}
	if dto.MinesHit == nil {
		dto.MinesHit = []int{}
	}
	if out.Tile >= 0 {
		tile := out.Tile
		dto.Tile = &tile
	}
	return dto
}

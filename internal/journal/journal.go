package journal

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/taskbingo-server/internal/bingo"
)

// Journal is the append-only record of board activity.
type Journal struct {
	log *logrus.Logger
}

// New writes the journal to stderr, or to a size-rotated file when path is
// set.
func New(path string) (*Journal, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetOutput(os.Stderr)

	if path != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   path,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Level:      logrus.InfoLevel,
			Formatter:  &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano},
		})
		if err != nil {
			return nil, err
		}
		log.AddHook(hook)
		log.SetOutput(io.Discard)
	}

	return &Journal{log: log}, nil
}

// NewWriter journals to w, for tests and tools.
func NewWriter(w io.Writer) *Journal {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: true})
	log.SetOutput(w)
	return &Journal{log: log}
}

func Discard() *Journal {
	return NewWriter(io.Discard)
}

func actorFields(cardID string, a bingo.Actor) logrus.Fields {
	fields := logrus.Fields{"card_id": cardID, "role": a.Role}
	if a.Team != "" {
		fields["team"] = a.Team
	}
	return fields
}

func (j *Journal) BoardCreated(b *bingo.Board) {
	j.log.WithFields(logrus.Fields{
		"card_id":     b.ID,
		"mode":        b.Mode,
		"grid_size":   b.GridSize,
		"unlock_mode": b.UnlockMode,
		"mine_count":  b.MineCount,
		"teams":       len(b.Teams),
	}).Info("board created")
}

func (j *Journal) TileClaimed(cardID string, a bingo.Actor, index int, t *bingo.Tile) {
	fields := actorFields(cardID, a)
	fields["tile"] = index
	fields["points"] = t.Task.Points()
	if t.Task != nil {
		fields["task"] = t.Task.Name
	}
	j.log.WithFields(fields).Info("tile claimed")
}

func (j *Journal) TilesRevealed(cardID string, a bingo.Actor, tiles []int) {
	if len(tiles) == 0 {
		return
	}
	fields := actorFields(cardID, a)
	fields["tiles"] = tiles
	j.log.WithFields(fields).Info("tiles revealed")
}

func (j *Journal) MineTriggered(cardID string, a bingo.Actor, index int, damage int) {
	fields := actorFields(cardID, a)
	fields["tile"] = index
	fields["damage"] = damage
	j.log.WithFields(fields).Warn("mine triggered")
}

func (j *Journal) LoginFailed(cardID string, team string) {
	j.log.WithFields(logrus.Fields{
		"card_id": cardID,
		"team":    team,
	}).Warn("login failed")
}

func (j *Journal) WriteConflict(cardID string, a bingo.Actor) {
	j.log.WithFields(actorFields(cardID, a)).Warn("stale board write rejected")
}

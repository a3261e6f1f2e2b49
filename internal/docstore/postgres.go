package docstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notifyChannel = "board_document"

type BoardDocument struct {
	CardId    string
	Document  Document
	Version   int64
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func (d *BoardDocument) snapshot() *Snapshot {
	return &Snapshot{ID: d.CardId, Version: d.Version, Document: d.Document}
}

// Postgres stores documents as JSONB rows of the board_document table and
// announces writes on a notification channel.
type Postgres struct {
	logger *slog.Logger
	db     *pgxpool.Pool
}

func NewPostgres(logger *slog.Logger, db *pgxpool.Pool) *Postgres {
	return &Postgres{logger: logger, db: db}
}

func (p *Postgres) Create(ctx context.Context, id string, doc Document) (int64, error) {
	var created *BoardDocument
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		rows, _ := tx.Query(
			ctx,
			`INSERT INTO board_document (card_id, document)
			VALUES (@card_id, @document)
			RETURNING *`,
			pgx.NamedArgs{"card_id": id, "document": doc},
		)
		var err error
		created, err = pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[BoardDocument])
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, id)
		return err
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return 0, ErrExists
	}
	if err != nil {
		return 0, err
	}
	return created.Version, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Snapshot, error) {
	rows, _ := p.db.Query(ctx, "SELECT * FROM board_document WHERE card_id = $1", id)
	doc, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[BoardDocument])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.snapshot(), nil
}

func (p *Postgres) Replace(
	ctx context.Context, id string, fields Document, expect int64,
) (int64, error) {
	var updated *BoardDocument
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		rows, _ := tx.Query(
			ctx,
			`UPDATE board_document
			SET document = document || @fields,
				version = version + 1,
				updated_at = now()
			WHERE card_id = @card_id AND (@expect::bigint < 0 OR version = @expect)
			RETURNING *`,
			pgx.NamedArgs{"card_id": id, "fields": fields, "expect": expect},
		)
		var err error
		updated, err = pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[BoardDocument])
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, id)
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		var version int64
		err := p.db.QueryRow(
			ctx, "SELECT version FROM board_document WHERE card_id = $1", id,
		).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, err
		}
		return 0, ErrStaleVersion
	}
	if err != nil {
		return 0, err
	}
	return updated.Version, nil
}

func (p *Postgres) Subscribe(ctx context.Context, id string) (<-chan Snapshot, error) {
	conn, err := p.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, err
	}

	ch := make(chan Snapshot, 1)
	if s, err := p.Get(ctx, id); err == nil {
		ch <- *s
	} else if !errors.Is(err, ErrNotFound) {
		conn.Release()
		return nil, err
	}

	go func() {
		defer close(ch)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := conn.Exec(ctx, "UNLISTEN "+notifyChannel); err != nil {
				conn.Hijack().Close(ctx)
				return
			}
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					p.logger.Error(
						"board notifications stopped",
						slog.String("card_id", id),
						slog.Any("error", err),
					)
				}
				return
			}
			if n.Payload != id {
				continue
			}
			s, err := p.Get(ctx, id)
			if err != nil {
				p.logger.Warn(
					"unable to fetch notified board",
					slog.String("card_id", id),
					slog.Any("error", err),
				)
				continue
			}
			offer(ch, *s)
		}
	}()

	return ch, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

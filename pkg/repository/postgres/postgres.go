// Package postgres persists graph documents in the table "model_graph".
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opst/footprintweb/pkg/conn/db/postgres/pool"
	xe "github.com/opst/footprintweb/pkg/errors"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/repository"
)

const schema = `
create table if not exists "model_graph" (
	"session_id" varchar not null primary key,
	"revision"   bigint not null,
	"body"       jsonb not null,
	"updated_at" timestamp with time zone not null default now()
);
create index if not exists "model_graph_updated_at" on "model_graph" ("updated_at");
`

type Provider struct {
	pool kpool.Pool
}

var _ repository.Provider = &Provider{}

func New(pool kpool.Pool) *Provider {
	return &Provider{pool: pool}
}

// Migrate creates the table when it does not exist.
func (p *Provider) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)
	return xe.Wrap(err)
}

func (p *Provider) Open(sessionID string) repository.Interface {
	return &pgRepository{pool: p.pool, sessionID: sessionID}
}

func (p *Provider) Expire(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := p.pool.Query(
		ctx,
		`delete from "model_graph" where "updated_at" < $1 returning "session_id"`,
		before,
	)
	if err != nil {
		if undefinedTable(err) {
			return []string{}, nil
		}
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	expired := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, xe.Wrap(err)
		}
		expired = append(expired, id)
	}
	if err := rows.Err(); err != nil {
		if undefinedTable(err) {
			return []string{}, nil
		}
		return nil, xe.Wrap(err)
	}
	return expired, nil
}

func undefinedTable(err error) bool {
	pgerr := new(pgconn.PgError)
	return errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UndefinedTable
}

type pgRepository struct {
	pool      kpool.Pool
	sessionID string
}

func (r *pgRepository) Get(ctx context.Context) (*graph.Document, error) {
	var body []byte
	var revision int64
	if err := r.pool.QueryRow(
		ctx,
		`select "body", "revision" from "model_graph" where "session_id" = $1`,
		r.sessionID,
	).Scan(&body, &revision); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || undefinedTable(err) {
			return nil, nil
		}
		return nil, xe.Wrap(err)
	}

	doc, err := graph.Decode(body)
	if err != nil {
		return nil, err
	}
	// the column is the truth
	doc.Revision = revision
	return doc, nil
}

func (r *pgRepository) Save(ctx context.Context, doc *graph.Document) (int64, error) {
	next := doc.Revision + 1
	body, err := graph.Encode(repository.Stamp(doc, next))
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	if doc.Revision == 0 {
		if _, err := tx.Exec(
			ctx,
			`insert into "model_graph" ("session_id", "revision", "body") values ($1, $2, $3)`,
			r.sessionID, next, body,
		); err != nil {
			if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UniqueViolation {
				return 0, repository.ErrConflict
			}
			return 0, xe.Wrap(err)
		}
	} else {
		ctag, err := tx.Exec(
			ctx,
			`
			update "model_graph"
			set "revision" = $3, "body" = $4, "updated_at" = now()
			where "session_id" = $1 and "revision" = $2
			`,
			r.sessionID, doc.Revision, next, body,
		)
		if err != nil {
			return 0, xe.Wrap(err)
		}
		if ctag.RowsAffected() == 0 {
			return 0, repository.ErrConflict
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, xe.Wrap(err)
	}
	return next, nil
}

func (r *pgRepository) HasData(ctx context.Context) (bool, error) {
	var found bool
	if err := r.pool.QueryRow(
		ctx,
		`select exists (select 1 from "model_graph" where "session_id" = $1)`,
		r.sessionID,
	).Scan(&found); err != nil {
		if undefinedTable(err) {
			return false, nil
		}
		return false, xe.Wrap(err)
	}
	return found, nil
}

func (r *pgRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(
		ctx, `delete from "model_graph" where "session_id" = $1`, r.sessionID,
	); err != nil && !undefinedTable(err) {
		return xe.Wrap(err)
	}
	return nil
}

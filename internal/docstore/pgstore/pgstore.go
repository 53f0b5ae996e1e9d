// Package pgstore implements docstore.Database on a single PostgreSQL JSONB
// table (see internal/db/migrations).
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"taskapi/internal/docstore"
)

// Pool is the subset of *pgxpool.Pool used by the store.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type Database struct {
	pool Pool
}

func New(pool Pool) *Database {
	return &Database{pool: pool}
}

func (d *Database) Collection(name string) docstore.Collection {
	return &Collection{pool: d.pool, name: name}
}

func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *Database) Close(context.Context) error {
	d.pool.Close()
	return nil
}

type Collection struct {
	pool Pool
	name string
}

func (c *Collection) FindAll(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	where, args, ok := c.where(filter, 1)
	if !ok {
		return []docstore.Document{}, nil
	}

	rows, err := c.pool.Query(ctx,
		`SELECT id, body FROM documents WHERE `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, c.wrap("find", err)
	}
	defer rows.Close()

	docs := []docstore.Document{}
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, c.wrap("scan", err)
		}
		doc, err := decode(id, body)
		if err != nil {
			return nil, c.wrap("decode", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, c.wrap("iterate", err)
	}
	return docs, nil
}

func (c *Collection) FindOne(ctx context.Context, filter docstore.Filter) (docstore.Document, error) {
	where, args, ok := c.where(filter, 1)
	if !ok {
		return nil, docstore.ErrNoDocuments
	}

	var id string
	var body []byte
	err := c.pool.QueryRow(ctx,
		`SELECT id, body FROM documents WHERE `+where+` ORDER BY created_at, id LIMIT 1`, args...).
		Scan(&id, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docstore.ErrNoDocuments
	}
	if err != nil {
		return nil, c.wrap("find one", err)
	}

	doc, err := decode(id, body)
	if err != nil {
		return nil, c.wrap("decode", err)
	}
	return doc, nil
}

func (c *Collection) InsertOne(ctx context.Context, doc docstore.Document) (string, error) {
	body, err := encode(doc)
	if err != nil {
		return "", c.wrap("encode", err)
	}

	id := uuid.NewString()
	_, err = c.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`,
		c.name, id, body)
	if isUniqueViolation(err) {
		return "", docstore.ErrDuplicate
	}
	if err != nil {
		return "", c.wrap("insert", err)
	}
	return id, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter docstore.Filter, partial docstore.Document) (int64, error) {
	body, err := encode(partial)
	if err != nil {
		return 0, c.wrap("encode", err)
	}
	where, args, ok := c.where(filter, 2)
	if !ok {
		return 0, nil
	}

	tag, err := c.pool.Exec(ctx,
		`UPDATE documents SET body = body || $1::jsonb
		 WHERE collection = $2 AND id = (SELECT id FROM documents WHERE `+where+` ORDER BY created_at, id LIMIT 1)`,
		append([]any{body}, args...)...)
	if isUniqueViolation(err) {
		return 0, docstore.ErrDuplicate
	}
	if err != nil {
		return 0, c.wrap("update", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter docstore.Filter) (int64, error) {
	where, args, ok := c.where(filter, 1)
	if !ok {
		return 0, nil
	}

	tag, err := c.pool.Exec(ctx,
		`DELETE FROM documents
		 WHERE collection = $1 AND id = (SELECT id FROM documents WHERE `+where+` ORDER BY created_at, id LIMIT 1)`,
		args...)
	if err != nil {
		return 0, c.wrap("delete", err)
	}
	return tag.RowsAffected(), nil
}

// where builds the predicate for filter with placeholders numbered from
// start; the collection name is always the first argument. It reports false
// when the identifier cannot be a UUID, which can never match.
func (c *Collection) where(filter docstore.Filter, start int) (string, []any, bool) {
	clauses := []string{fmt.Sprintf("collection = $%d", start)}
	args := []any{c.name}

	rest := make(map[string]any, len(filter))
	for k, v := range filter {
		if k != docstore.IDField {
			rest[k] = v
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", nil, false
		}
		if _, err := uuid.Parse(s); err != nil {
			return "", nil, false
		}
		args = append(args, s)
		clauses = append(clauses, fmt.Sprintf("id = $%d", start+len(args)-1))
	}

	if len(rest) > 0 {
		b, err := json.Marshal(rest)
		if err != nil {
			return "", nil, false
		}
		args = append(args, string(b))
		clauses = append(clauses, fmt.Sprintf("body @> $%d::jsonb", start+len(args)-1))
	}
	return strings.Join(clauses, " AND "), args, true
}

func (c *Collection) wrap(op string, err error) error {
	return oops.Code("POSTGRES_OPERATION_FAILED").
		With("operation", op).
		With("collection", c.name).
		Wrap(err)
}

func encode(doc docstore.Document) (string, error) {
	m := make(map[string]any, len(doc))
	for k, v := range doc {
		if k != docstore.IDField {
			m[k] = v
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(id string, body []byte) (docstore.Document, error) {
	doc := docstore.Document{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, err
		}
	}
	doc[docstore.IDField] = id
	return doc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

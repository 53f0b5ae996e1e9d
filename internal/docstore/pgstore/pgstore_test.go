package pgstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/docstore"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, docstore.Collection) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, New(mock).Collection(docstore.TasksCollection)
}

func TestCollection_FindAll(t *testing.T) {
	tests := []struct {
		name      string
		filter    docstore.Filter
		setupMock func(mock pgxmock.PgxPoolIface)
		want      []docstore.Document
		wantErr   string
	}{
		{
			name:   "all documents",
			filter: docstore.Filter{},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "body"}).
					AddRow("id-1", []byte(`{"title":"a"}`)).
					AddRow("id-2", []byte(`{"title":"b","done":true}`))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, body FROM documents WHERE collection = $1 ORDER BY created_at, id`)).
					WithArgs(docstore.TasksCollection).
					WillReturnRows(rows)
			},
			want: []docstore.Document{
				{"_id": "id-1", "title": "a"},
				{"_id": "id-2", "title": "b", "done": true},
			},
		},
		{
			name:   "field filter uses containment",
			filter: docstore.Filter{"title": "a"},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`WHERE collection = $1 AND body @> $2::jsonb`)).
					WithArgs(docstore.TasksCollection, `{"title":"a"}`).
					WillReturnRows(pgxmock.NewRows([]string{"id", "body"}))
			},
			want: []docstore.Document{},
		},
		{
			name:      "non-uuid identifier matches nothing",
			filter:    docstore.IDFilter("nope"),
			setupMock: func(pgxmock.PgxPoolIface) {},
			want:      []docstore.Document{},
		},
		{
			name:   "database error",
			filter: docstore.Filter{},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, body FROM documents`).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, coll := newMock(t)
			tt.setupMock(mock)

			got, err := coll.FindAll(context.Background(), tt.filter)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestCollection_FindOne(t *testing.T) {
	id := uuid.NewString()

	t.Run("found by id", func(t *testing.T) {
		mock, coll := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE collection = $1 AND id = $2 ORDER BY created_at, id LIMIT 1`)).
			WithArgs(docstore.TasksCollection, id).
			WillReturnRows(pgxmock.NewRows([]string{"id", "body"}).AddRow(id, []byte(`{"title":"a"}`)))

		doc, err := coll.FindOne(context.Background(), docstore.IDFilter(id))
		require.NoError(t, err)
		assert.Equal(t, docstore.Document{"_id": id, "title": "a"}, doc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows", func(t *testing.T) {
		mock, coll := newMock(t)
		mock.ExpectQuery(`SELECT id, body FROM documents`).
			WithArgs(docstore.TasksCollection, id).
			WillReturnRows(pgxmock.NewRows([]string{"id", "body"}))

		_, err := coll.FindOne(context.Background(), docstore.IDFilter(id))
		assert.ErrorIs(t, err, docstore.ErrNoDocuments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCollection_InsertOne(t *testing.T) {
	t.Run("generates uuid and strips caller id", func(t *testing.T) {
		mock, coll := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`)).
			WithArgs(docstore.TasksCollection, pgxmock.AnyArg(), `{"title":"a"}`).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := coll.InsertOne(context.Background(), docstore.Document{"_id": "mine", "title": "a"})
		require.NoError(t, err)
		_, err = uuid.Parse(id)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicate", func(t *testing.T) {
		mock, coll := newMock(t)
		mock.ExpectExec(`INSERT INTO documents`).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		_, err := coll.InsertOne(context.Background(), docstore.Document{"email": "a@b.com"})
		assert.ErrorIs(t, err, docstore.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCollection_UpdateOne(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name      string
		filter    docstore.Filter
		setupMock func(mock pgxmock.PgxPoolIface)
		want      int64
		wantErr   bool
	}{
		{
			name:   "merges partial document",
			filter: docstore.IDFilter(id),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET body = body || $1::jsonb`)).
					WithArgs(`{"title":"b"}`, docstore.TasksCollection, id).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			want: 1,
		},
		{
			name:   "no match",
			filter: docstore.IDFilter(id),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE documents`).
					WithArgs(`{"title":"b"}`, docstore.TasksCollection, id).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			want: 0,
		},
		{
			name:      "invalid id skips the database",
			filter:    docstore.IDFilter("123"),
			setupMock: func(pgxmock.PgxPoolIface) {},
			want:      0,
		},
		{
			name:   "database error",
			filter: docstore.IDFilter(id),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE documents`).WillReturnError(errors.New("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, coll := newMock(t)
			tt.setupMock(mock)

			got, err := coll.UpdateOne(context.Background(), tt.filter, docstore.Document{"_id": id, "title": "b"})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCollection_DeleteOne(t *testing.T) {
	id := uuid.NewString()
	mock, coll := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents`)).
		WithArgs(docstore.TasksCollection, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	n, err := coll.DeleteOne(context.Background(), docstore.IDFilter(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

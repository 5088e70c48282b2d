package sqlsource

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeRows is an in-memory pgx.Rows.
type fakeRows struct {
	fields []string
	values [][]any
	err    error
	pos    int
	closed bool
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Scan(dest ...any) error        { return errors.New("not implemented") }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.fields))
	for i, f := range r.fields {
		out[i] = pgconn.FieldDescription{Name: f}
	}
	return out
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

// fakeTx embeds pgx.Tx so only the methods the source uses need bodies.
type fakeTx struct {
	pgx.Tx
	rows       *fakeRows
	queryErr   error
	rolledBack bool
	query      string
}

func (tx *fakeTx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	tx.query = sql
	if tx.queryErr != nil {
		return nil, tx.queryErr
	}
	return tx.rows, nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	opts     pgx.TxOptions
	began    bool
	deadline bool
}

func (db *fakeDB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	db.began = true
	db.opts = opts
	_, db.deadline = ctx.Deadline()
	return db.tx, nil
}

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{name: "select", query: "SELECT subject, score FROM results"},
		{name: "trailing semicolon", query: "select 1;"},
		{name: "with", query: "WITH t AS (SELECT 1 AS a) SELECT a FROM t"},
		{name: "column named like a keyword part", query: "SELECT updated_at, created_by FROM t"},
		{name: "empty", query: "  ", wantErr: true},
		{name: "two statements", query: "SELECT 1; DROP TABLE t", wantErr: true},
		{name: "delete", query: "DELETE FROM t", wantErr: true},
		{name: "data-modifying cte", query: "WITH d AS (DELETE FROM t RETURNING *) SELECT * FROM d", wantErr: true},
		{name: "select into via update", query: "select 1 from t for update", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReadOnly(tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckReadOnly(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrQueryRejected) {
				t.Errorf("error %v does not wrap ErrQueryRejected", err)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	rows := &fakeRows{
		fields: []string{"subject", "score", "team", "score"},
		values: [][]any{
			{"speed", int32(10), "red", nil},
			{"grip", 2.5, []byte("blue"), true},
		},
	}
	db := &fakeDB{tx: &fakeTx{rows: rows}}
	src := New(db, time.Second, 0)

	tbl, err := src.Query(context.Background(), "SELECT * FROM results")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if want := []string{"subject", "score", "team", "score.1"}; !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %v, want %v", tbl.Columns, want)
	}
	want := [][]string{
		{"speed", "10", "red", ""},
		{"grip", "2.5", "blue", "true"},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %v, want %v", tbl.Rows, want)
	}
	if tbl.Source != SourceName {
		t.Errorf("Source = %q, want %q", tbl.Source, SourceName)
	}

	if db.opts.AccessMode != pgx.ReadOnly {
		t.Errorf("AccessMode = %v, want read only", db.opts.AccessMode)
	}
	if !db.deadline {
		t.Error("query context has no deadline")
	}
	if !db.tx.rolledBack {
		t.Error("transaction was not rolled back")
	}
	if !rows.closed {
		t.Error("rows were not closed")
	}
}

func TestQuery_Errors(t *testing.T) {
	t.Run("rejected before touching the database", func(t *testing.T) {
		db := &fakeDB{tx: &fakeTx{}}
		_, err := New(db, 0, 0).Query(context.Background(), "DROP TABLE results")
		if !errors.Is(err, ErrQueryRejected) {
			t.Errorf("Query() error = %v, want %v", err, ErrQueryRejected)
		}
		if db.began {
			t.Error("transaction started for a rejected query")
		}
	})

	t.Run("query error", func(t *testing.T) {
		boom := errors.New("relation does not exist")
		db := &fakeDB{tx: &fakeTx{queryErr: boom}}
		_, err := New(db, 0, 0).Query(context.Background(), "SELECT * FROM nope")
		if !errors.Is(err, boom) {
			t.Errorf("Query() error = %v, want %v", err, boom)
		}
	})

	t.Run("row error", func(t *testing.T) {
		boom := errors.New("connection reset")
		db := &fakeDB{tx: &fakeTx{rows: &fakeRows{fields: []string{"a"}, err: boom}}}
		_, err := New(db, 0, 0).Query(context.Background(), "SELECT a FROM t")
		if !errors.Is(err, boom) {
			t.Errorf("Query() error = %v, want %v", err, boom)
		}
	})

	t.Run("too many rows", func(t *testing.T) {
		rows := &fakeRows{fields: []string{"a"}, values: [][]any{{1}, {2}, {3}}}
		db := &fakeDB{tx: &fakeTx{rows: rows}}
		_, err := New(db, 0, 2).Query(context.Background(), "SELECT a FROM t")
		if !errors.Is(err, ErrQueryRejected) {
			t.Errorf("Query() error = %v, want %v", err, ErrQueryRejected)
		}
	})
}

func TestFormatValue(t *testing.T) {
	num := pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}
	id := [16]byte{0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78}

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "x", want: "x"},
		{name: "int64", in: int64(-7), want: "-7"},
		{name: "float64", in: 0.25, want: "0.25"},
		{name: "float32", in: float32(1.5), want: "1.5"},
		{name: "bool", in: false, want: "false"},
		{name: "numeric", in: num, want: "123.45"},
		{name: "null numeric", in: pgtype.Numeric{}, want: ""},
		{name: "date", in: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), want: "2024-03-01"},
		{name: "timestamp", in: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), want: "2024-03-01T12:30:00Z"},
		{name: "uuid", in: id, want: "12345678-1234-5678-1234-567812345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

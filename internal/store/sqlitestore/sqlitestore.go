// Package sqlitestore keeps todos in a single SQLite file (or ":memory:").
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

//go:embed schema.sql
var schemaFS embed.FS

// fixed-width so created_at sorts correctly as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection: SQLite has a single writer and ":memory:" is per-connection
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const selectColumns = "SELECT id, title, description, priority, is_complete, created_at, updated_at FROM todos"

func (s *Store) List(ctx context.Context, f store.Filter) ([]model.Todo, error) {
	query := selectColumns
	var args []any
	if f.Complete != nil {
		query += " WHERE is_complete = ?"
		args = append(args, boolToInt(*f.Complete))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *Store) Get(ctx context.Context, id int64) (model.Todo, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, store.ErrNotFound
	}
	return todo, err
}

func (s *Store) Create(ctx context.Context, in model.CreateTodoData) (model.Todo, error) {
	priority := in.Priority
	if priority == "" {
		priority = model.DefaultPriority
	}
	now := s.now().UTC().Format(timeLayout)

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO todos (title, description, priority, is_complete, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)",
		in.Title, nullString(in.Description), string(priority), now, now)
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, id int64, in model.UpdateTodoData) (model.Todo, error) {
	todo, err := s.Get(ctx, id)
	if err != nil {
		return model.Todo{}, err
	}
	store.Apply(&todo, in)
	return s.save(ctx, todo)
}

func (s *Store) SetComplete(ctx context.Context, id int64, complete bool) (model.Todo, error) {
	return s.Update(ctx, id, model.UpdateTodoData{IsComplete: &complete})
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) save(ctx context.Context, todo model.Todo) (model.Todo, error) {
	now := s.now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		"UPDATE todos SET title = ?, description = ?, priority = ?, is_complete = ?, updated_at = ? WHERE id = ?",
		todo.Title, nullString(todo.Description), string(todo.Priority), boolToInt(todo.IsComplete), now, todo.ID)
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo %d: %w", todo.ID, err)
	}
	return s.Get(ctx, todo.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (model.Todo, error) {
	var (
		todo                 model.Todo
		description          sql.NullString
		priority             string
		complete             int64
		createdAt, updatedAt string
	)
	if err := row.Scan(&todo.ID, &todo.Title, &description, &priority, &complete, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, err
		}
		return model.Todo{}, fmt.Errorf("scan todo: %w", err)
	}
	if description.Valid {
		todo.Description = model.Ptr(description.String)
	}
	p, err := model.ParsePriority(priority)
	if err != nil {
		return model.Todo{}, fmt.Errorf("todo %d: %w", todo.ID, err)
	}
	todo.Priority = p
	todo.IsComplete = complete != 0
	if todo.CreatedAt.Time, err = time.Parse(timeLayout, createdAt); err != nil {
		return model.Todo{}, fmt.Errorf("todo %d created_at: %w", todo.ID, err)
	}
	if todo.UpdatedAt.Time, err = time.Parse(timeLayout, updatedAt); err != nil {
		return model.Todo{}, fmt.Errorf("todo %d updated_at: %w", todo.ID, err)
	}
	return todo, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

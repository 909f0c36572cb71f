// Package store provides SQL-backed persistence for users, documents and
// block snapshots.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/internal/database"
	"github.com/scribehq/scribe/pkg/types"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Document is a collaborative document's metadata row. Block content lives in
// a separate snapshot table.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	TeamID       string    `json:"teamId,omitempty"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// Store wraps the database with typed queries.
type Store struct {
	db *database.DB
}

// New creates a Store on top of an open database.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a new user with a generated id.
func (s *Store) CreateUser(ctx context.Context, userName string) (User, error) {
	u := User{
		ID:       types.NewCUID(),
		UserName: userName,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, user_name) VALUES (?, ?)
		RETURNING created_at, updated_at
	`, u.ID, u.UserName).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_name, created_at, updated_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.UserName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByName fetches a user by display name.
func (s *Store) GetUserByName(ctx context.Context, userName string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_name, created_at, updated_at FROM users WHERE user_name = ?
	`, userName).Scan(&u.ID, &u.UserName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by name: %w", err)
	}
	return u, nil
}

// CreateDocument inserts a new document with an empty block snapshot.
func (s *Store) CreateDocument(ctx context.Context, title, teamID, createdBy string) (Document, error) {
	d := Document{
		ID:        types.NewCUID(),
		Title:     title,
		TeamID:    teamID,
		CreatedBy: createdBy,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, title, team_id, created_by) VALUES (?, ?, ?, ?)
		RETURNING created_at, updated_at, last_active_at
	`, d.ID, d.Title, d.TeamID, d.CreatedBy).Scan(&d.CreatedAt, &d.UpdatedAt, &d.LastActiveAt)
	if err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO document_blocks (document_id, blocks) VALUES (?, '[]')
	`, d.ID); err != nil {
		return Document{}, fmt.Errorf("create document blocks: %w", err)
	}
	return d, nil
}

// GetDocument fetches a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (Document, error) {
	var d Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, team_id, created_by, created_at, updated_at, last_active_at
		FROM documents WHERE id = ?
	`, id).Scan(&d.ID, &d.Title, &d.TeamID, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt, &d.LastActiveAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns all documents, most recently active first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, team_id, created_by, created_at, updated_at, last_active_at
		FROM documents ORDER BY last_active_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.TeamID, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt, &d.LastActiveAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document and its block snapshot.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadBlocks reads the block snapshot for a document. A document without a
// snapshot row yields an empty list.
func (s *Store) LoadBlocks(ctx context.Context, documentID string) ([]collab.Block, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT blocks FROM document_blocks WHERE document_id = ?
	`, documentID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}

	var blocks []collab.Block
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	return blocks, nil
}

// SaveBlocks replaces the block snapshot for a document.
func (s *Store) SaveBlocks(ctx context.Context, documentID string, blocks []collab.Block) error {
	if blocks == nil {
		blocks = []collab.Block{}
	}
	raw, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("encode blocks: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO document_blocks (document_id, blocks, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(document_id) DO UPDATE SET
			blocks = excluded.blocks,
			updated_at = excluded.updated_at
	`, documentID, string(raw))
	if err != nil {
		return fmt.Errorf("save blocks: %w", err)
	}
	return nil
}

// MarkDocumentActive bumps a document's activity timestamp.
func (s *Store) MarkDocumentActive(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents SET last_active_at = CURRENT_TIMESTAMP WHERE id = ?
	`, documentID)
	return err
}

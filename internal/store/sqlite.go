// internal/store/sqlite.go
//
// SQLite implementation of Store.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys,
//     immediate write transactions).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Conditional writes: UPDATE … WHERE id=? AND version=?; zero affected
//     rows means the record changed (ErrConflict) or vanished (ErrNotFound).
//
// Games are stored as a JSON snapshot next to the columns used for lookups.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite is a Store backed by database/sql.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an already opened and migrated database.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// OpenSQLite opens (creating if missing) the database file at path and
// applies pending migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, migrationsFS); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLite(db), nil
}

// openDB opens a SQLite database file.
//
// - Ensures parent directory exists for relative paths (e.g. ./data/app.db).
// - Configures busy timeout, WAL journaling and BEGIN IMMEDIATE transactions.
// - Enforces foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies *.sql files from fsys in lexical order, once each.
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ------------------------------ games --------------------------------------

func (s *SQLite) CreateGame(ctx context.Context, g *game.Game) error {
	return insertGame(ctx, s.db, g)
}

func insertGame(ctx context.Context, q execer, g *game.Game) error {
	next := g.Clone()
	next.Version = 1
	state, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}
	if _, err := q.ExecContext(ctx, `
        INSERT INTO games (id, player_a, player_b, status, state, version, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?)`,
		next.ID, next.PlayerA(), next.PlayerB(), string(next.Status), string(state), next.Version,
		formatTime(next.CreatedAt), formatTime(next.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	g.Version = next.Version
	return nil
}

func (s *SQLite) GetGame(ctx context.Context, id string) (*game.Game, error) {
	var state string
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT state, version FROM games WHERE id=?`, id).Scan(&state, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeGame(state, version)
}

func decodeGame(state string, version int64) (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal([]byte(state), &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	g.Version = version
	return &g, nil
}

func (s *SQLite) UpdateGame(ctx context.Context, g *game.Game) error {
	next := g.Clone()
	next.Version = g.Version + 1
	state, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE games SET status=?, state=?, version=?, updated_at=?
        WHERE id=? AND version=?`,
		string(next.Status), string(state), next.Version, formatTime(next.UpdatedAt),
		g.ID, g.Version,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if err := s.checkAffected(ctx, s.db, res, `SELECT 1 FROM games WHERE id=?`, g.ID); err != nil {
		return err
	}
	g.Version = next.Version
	return nil
}

func (s *SQLite) ListGames(ctx context.Context, playerID string, limit int) ([]*game.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT state, version FROM games
        WHERE player_a=? OR player_b=?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, playerID, playerID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*game.Game{}
	for rows.Next() {
		var state string
		var version int64
		if err := rows.Scan(&state, &version); err != nil {
			return nil, err
		}
		g, err := decodeGame(state, version)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ----------------------------- invites -------------------------------------

const inviteColumns = `id, sender_id, receiver_id, status, COALESCE(game_id,''), message, created_at, updated_at, expires_at, version`

func (s *SQLite) CreateInvite(ctx context.Context, inv *invite.Invite, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT `+inviteColumns+` FROM invites
        WHERE sender_id=? AND receiver_id=? AND status=?`,
		inv.Sender, inv.Receiver, string(invite.StatusPending))
	if err != nil {
		return err
	}
	pending, err := scanInvites(rows)
	if err != nil {
		return err
	}
	for _, other := range pending {
		if other.Open(now) {
			return invite.ErrDuplicatePending
		}
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO invites (id, sender_id, receiver_id, status, game_id, message, created_at, updated_at, expires_at, version)
        VALUES (?,?,?,?,NULL,?,?,?,?,1)`,
		inv.ID, inv.Sender, inv.Receiver, string(inv.Status), inv.Message,
		formatTime(inv.CreatedAt), formatTime(inv.UpdatedAt), formatTime(inv.ExpiresAt),
	); err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	inv.Version = 1
	return nil
}

func (s *SQLite) GetInvite(ctx context.Context, id string) (*invite.Invite, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	list, err := scanInvites(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

func (s *SQLite) UpdateInvite(ctx context.Context, inv *invite.Invite) error {
	if err := s.updateInvite(ctx, s.db, inv); err != nil {
		return err
	}
	inv.Version++
	return nil
}

func (s *SQLite) updateInvite(ctx context.Context, q execer, inv *invite.Invite) error {
	var gameID any
	if inv.GameID != "" {
		gameID = inv.GameID
	}
	res, err := q.ExecContext(ctx, `
        UPDATE invites SET status=?, game_id=?, updated_at=?, version=version+1
        WHERE id=? AND version=?`,
		string(inv.Status), gameID, formatTime(inv.UpdatedAt), inv.ID, inv.Version,
	)
	if err != nil {
		return fmt.Errorf("update invite: %w", err)
	}
	return s.checkAffected(ctx, q, res, `SELECT 1 FROM invites WHERE id=?`, inv.ID)
}

func (s *SQLite) AcceptInvite(ctx context.Context, inv *invite.Invite, g *game.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// The game goes in first so the invite's game_id reference resolves.
	version := g.Version
	if err := insertGame(ctx, tx, g); err != nil {
		return err
	}
	if err := s.updateInvite(ctx, tx, inv); err != nil {
		g.Version = version
		return err
	}
	if err := tx.Commit(); err != nil {
		g.Version = version
		return err
	}
	inv.Version++
	return nil
}

func (s *SQLite) ListPendingInvites(ctx context.Context, receiverID string, now time.Time, limit int) ([]*invite.Invite, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+inviteColumns+` FROM invites
        WHERE receiver_id=? AND status=? AND (expires_at='' OR expires_at>?)
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, receiverID, string(invite.StatusPending), formatTime(now), normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanInvites(rows)
}

// scanInvites reads and closes rows selected with inviteColumns.
func scanInvites(rows *sql.Rows) ([]*invite.Invite, error) {
	defer rows.Close()
	out := []*invite.Invite{}
	for rows.Next() {
		var (
			inv                       invite.Invite
			status                    string
			created, updated, expires string
		)
		if err := rows.Scan(&inv.ID, &inv.Sender, &inv.Receiver, &status, &inv.GameID, &inv.Message,
			&created, &updated, &expires, &inv.Version); err != nil {
			return nil, err
		}
		inv.Status = invite.Status(status)
		inv.CreatedAt = parseTime(created)
		inv.UpdatedAt = parseTime(updated)
		inv.ExpiresAt = parseTime(expires)
		out = append(out, &inv)
	}
	return out, rows.Err()
}

// ------------------------------ helpers ------------------------------------

// checkAffected turns a zero-row conditional update into ErrConflict when
// the record still exists, or ErrNotFound when it does not.
func (s *SQLite) checkAffected(ctx context.Context, q execer, res sql.Result, existsQuery, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = q.QueryRowContext(ctx, existsQuery, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders t in UTC; zero becomes "".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// parseTime parses stored timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeLayout, s)
	return t
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

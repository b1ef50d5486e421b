package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChatStore = (*Store)(nil)

// Store is the SQLite-backed chat store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.germano/data/chat.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".germano", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chat.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateSession creates a session. An empty title gets the default
// timestamp title.
func (s *Store) CreateSession(ctx context.Context, title string) (*domain.ChatSession, error) {
	now := time.Now().UTC()
	if title == "" {
		title = domain.DefaultSessionTitle(now)
	}

	session := &domain.ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, title, created_at)
		VALUES (?, ?, ?)
	`, session.ID, session.Title, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at FROM chat_sessions WHERE id = ?
	`, id)

	var session domain.ChatSession
	var createdAt sql.NullTime
	if err := row.Scan(&session.ID, &session.Title, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	if createdAt.Valid {
		session.CreatedAt = createdAt.Time
	}
	return &session, nil
}

// ListSessions returns sessions newest first. A limit of zero or less
// returns all sessions.
func (s *Store) ListSessions(ctx context.Context, offset, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at FROM chat_sessions
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession
	for rows.Next() {
		var session domain.ChatSession
		var createdAt sql.NullTime
		if err := rows.Scan(&session.ID, &session.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if createdAt.Valid {
			session.CreatedAt = createdAt.Time
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// SaveMessage stores a message and assigns its ID.
func (s *Store) SaveMessage(ctx context.Context, msg *domain.Message) error {
	if !domain.ValidRole(msg.Role) {
		return fmt.Errorf("%w: role %q", domain.ErrInvalidInput, msg.Role)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (session_id, role, content, ai_model, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.SessionID, msg.Role, msg.Content, msg.AIModel, msg.Link, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting message id: %w", err)
	}
	msg.ID = id
	return nil
}

// ListMessages returns a session's messages oldest first, citations
// attached to assistant messages. A limit of zero or less returns all
// messages.
func (s *Store) ListMessages(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, ai_model, link, created_at
		FROM messages WHERE session_id = ?
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	index := make(map[int64]int)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		index[msg.ID] = len(messages)
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	citations, err := s.sessionCitations(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, citation := range citations {
		if pos, ok := index[citation.MessageID]; ok {
			messages[pos].Citations = append(messages[pos].Citations, citation)
		}
	}
	return messages, nil
}

// SaveCitations stores citations for an assistant message and returns
// them with assigned IDs.
func (s *Store) SaveCitations(ctx context.Context, messageID int64, citations []domain.Citation) ([]domain.Citation, error) {
	if len(citations) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	saved := make([]domain.Citation, len(citations))
	for i, citation := range citations {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO citations (message_id, start_pos, end_pos, text, doc_ids)
			VALUES (?, ?, ?, ?, ?)
		`, messageID, citation.Start, citation.End, citation.Text,
			domain.JoinDocumentIDs(citation.DocumentIDs))
		if err != nil {
			return nil, fmt.Errorf("saving citation: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting citation id: %w", err)
		}
		citation.ID = id
		citation.MessageID = messageID
		saved[i] = citation
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing citations: %w", err)
	}
	return saved, nil
}

// GetCitation retrieves a citation by ID.
func (s *Store) GetCitation(ctx context.Context, id int64) (*domain.Citation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, message_id, start_pos, end_pos, text, doc_ids
		FROM citations WHERE id = ?
	`, id)

	citation, err := scanCitation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning citation: %w", err)
	}
	return citation, nil
}

// sessionCitations loads all citations for a session's messages.
func (s *Store) sessionCitations(ctx context.Context, sessionID string) ([]domain.Citation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.message_id, c.start_pos, c.end_pos, c.text, c.doc_ids
		FROM citations c
		JOIN messages m ON m.id = c.message_id
		WHERE m.session_id = ?
		ORDER BY c.id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing citations: %w", err)
	}
	defer rows.Close()

	var citations []domain.Citation
	for rows.Next() {
		citation, err := scanCitation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		citations = append(citations, *citation)
	}
	return citations, rows.Err()
}

func scanMessage(rows *sql.Rows) (*domain.Message, error) {
	var msg domain.Message
	var createdAt sql.NullTime
	if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content,
		&msg.AIModel, &msg.Link, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning message: %w", err)
	}
	if createdAt.Valid {
		msg.CreatedAt = createdAt.Time
	}
	return &msg, nil
}

func scanCitation(scan func(...any) error) (*domain.Citation, error) {
	var citation domain.Citation
	var docIDs string
	if err := scan(&citation.ID, &citation.MessageID, &citation.Start,
		&citation.End, &citation.Text, &docIDs); err != nil {
		return nil, err
	}
	citation.DocumentIDs = domain.SplitDocumentIDs(docIDs)
	return &citation, nil
}

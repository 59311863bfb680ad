package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"sophonine/auracall/pkg/adaptation"
)

// StorageError wraps a failure in the audit store with the operation that
// caused it.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("feedback storage %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

func storageErr(op string, cause error) error {
	return &StorageError{Op: op, Cause: cause}
}

// Config contains configuration for the SQLite audit store.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default audit store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:         "data/feedback.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// Record is one persisted feedback event plus the adaptation outcome it
// produced.
type Record struct {
	Feedback   adaptation.Feedback
	Adjustment adaptation.Adjustment
	Outcome    string
	CreatedAt  time.Time
}

// Query filters audit records.
type Query struct {
	SessionID string
	Category  adaptation.Category
	Since     *time.Time
	Limit     int
}

// Store is the SQLite-backed feedback audit log.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// NewStore opens (creating if needed) the audit database at config.Path.
// It initializes the schema and enables WAL mode if configured.
func NewStore(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := slog.Default().With("component", "feedback.store")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, storageErr("open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Store{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("feedback audit store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return storageErr("enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return storageErr("set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return storageErr("create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return storageErr("insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return storageErr("get_schema_version", err)
	}
	if version != SchemaVersion {
		return storageErr("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a feedback record.
func (s *Store) Store(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO feedback (
			id, session_id,
			category, kind,
			comment, user_query, assistant_response,
			rating, problem_solved,
			adjustment, outcome,
			created_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.Feedback.Timestamp
	}

	var commentVal interface{}
	if rec.Feedback.Comment != "" {
		commentVal = rec.Feedback.Comment
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.Feedback.ID, rec.Feedback.SessionID,
		string(rec.Feedback.Category), string(rec.Feedback.Kind),
		commentVal, rec.Feedback.UserQuery, rec.Feedback.AssistantResponse,
		rec.Feedback.Rating, rec.Feedback.ProblemSolved,
		string(rec.Adjustment), rec.Outcome,
		createdAt,
	)
	if err != nil {
		return storageErr("store", err)
	}

	return nil
}

// StoreAsync persists a feedback record on a best-effort basis: failures
// are logged, never surfaced to the request path.
func (s *Store) StoreAsync(rec *Record) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.BusyTimeout)
		defer cancel()
		if err := s.Store(ctx, rec); err != nil {
			s.logger.Error("feedback audit write failed",
				"feedback_id", rec.Feedback.ID,
				"session_id", rec.Feedback.SessionID,
				"error", err,
			)
		}
	}()
}

// Query retrieves audit records matching the filters, newest first.
func (s *Store) Query(ctx context.Context, q *Query) ([]*Record, error) {
	sqlQuery := "SELECT id, session_id, category, kind, comment, user_query, assistant_response, rating, problem_solved, adjustment, outcome, created_at FROM feedback"

	var conditions []string
	var args []interface{}
	if q.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, q.SessionID)
	}
	if q.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(q.Category))
	}
	if q.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *q.Since)
	}

	for i, condition := range conditions {
		if i == 0 {
			sqlQuery += " WHERE " + condition
		} else {
			sqlQuery += " AND " + condition
		}
	}

	sqlQuery += " ORDER BY created_at DESC"

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, storageErr("query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, storageErr("scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query", err)
	}

	return records, nil
}

// Count returns the number of audit records matching the filters.
func (s *Store) Count(ctx context.Context, q *Query) (int64, error) {
	sqlQuery := "SELECT COUNT(*) FROM feedback"
	var args []interface{}

	if q.SessionID != "" {
		sqlQuery += " WHERE session_id = ?"
		args = append(args, q.SessionID)
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, storageErr("count", err)
	}
	return count, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return storageErr("close", err)
	}
	s.logger.Info("feedback audit store closed")
	return nil
}

func scanRow(rows *sql.Rows) (*Record, error) {
	var rec Record
	var category, kind, adjustment string
	var comment sql.NullString

	err := rows.Scan(
		&rec.Feedback.ID, &rec.Feedback.SessionID,
		&category, &kind,
		&comment, &rec.Feedback.UserQuery, &rec.Feedback.AssistantResponse,
		&rec.Feedback.Rating, &rec.Feedback.ProblemSolved,
		&adjustment, &rec.Outcome,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Feedback.Category = adaptation.Category(category)
	rec.Feedback.Kind = adaptation.Adjustment(kind)
	rec.Adjustment = adaptation.Adjustment(adjustment)
	if comment.Valid {
		rec.Feedback.Comment = comment.String
	}
	rec.Feedback.Timestamp = rec.CreatedAt

	return &rec, nil
}

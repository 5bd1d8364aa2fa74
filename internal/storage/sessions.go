// Package storage persists completed pipeline sessions in SurrealDB.
// The journal is optional; the application runs without it when no
// storage address is configured.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/finquery/internal/common"
	"github.com/bobmcallan/finquery/internal/interfaces"
	"github.com/bobmcallan/finquery/internal/models"
)

const sessionsTable = "sessions"

// SessionStore implements interfaces.SessionStore using SurrealDB.
type SessionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// sessionRecord is the SurrealDB record shape for the sessions table.
// The full session is stored as JSON; the flat fields exist for listing
// and querying without decoding every record.
type sessionRecord struct {
	SessionID     string    `json:"session_id"`
	Query         string    `json:"query"`
	Symbols       []string  `json:"symbols"`
	FinalResponse string    `json:"final_response"`
	Score         float64   `json:"score"`
	AllPassed     bool      `json:"all_passed"`
	Data          string    `json:"data"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSessionStore connects to SurrealDB and prepares the sessions table.
func NewSessionStore(config *common.StorageConfig, logger *common.Logger) (*SessionStore, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// SurrealDB v3 errors on querying tables that do not exist yet
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", sessionsTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", sessionsTable, err)
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("Session store initialized")

	return &SessionStore{db: db, logger: logger}, nil
}

// SaveSession upserts a completed session record.
func (s *SessionStore) SaveSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	score := 0.0
	allPassed := false
	if session.Verdict != nil {
		score = session.Verdict.Score
		allPassed = session.Verdict.AllPassed
	}

	sql := `UPSERT $rid SET
		session_id = $session_id, query = $query, symbols = $symbols,
		final_response = $final_response, score = $score, all_passed = $all_passed,
		data = $data, created_at = $created_at`
	vars := map[string]any{
		"rid":            surrealmodels.NewRecordID(sessionsTable, session.ID),
		"session_id":     session.ID,
		"query":          session.Query,
		"symbols":        session.Symbols,
		"final_response": session.FinalResponse,
		"score":          score,
		"all_passed":     allPassed,
		"data":           string(data),
		"created_at":     session.CreatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SessionStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	rid := surrealmodels.NewRecordID(sessionsTable, id)
	record, err := surrealdb.Select[sessionRecord](ctx, s.db, rid)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	if record == nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return decodeSession(record)
}

// ListSessions returns the most recent sessions, newest first.
func (s *SessionStore) ListSessions(ctx context.Context, limit int) ([]*models.Session, error) {
	if limit <= 0 {
		limit = 20
	}

	sql := fmt.Sprintf("SELECT * FROM %s ORDER BY created_at DESC LIMIT $limit", sessionsTable)
	results, err := surrealdb.Query[[]sessionRecord](ctx, s.db, sql, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	records := (*results)[0].Result
	sessions := make([]*models.Session, 0, len(records))
	for i := range records {
		session, err := decodeSession(&records[i])
		if err != nil {
			s.logger.Warn().Err(err).Str("session", records[i].SessionID).Msg("Skipping undecodable session record")
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Close releases the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close(context.Background())
}

func decodeSession(record *sessionRecord) (*models.Session, error) {
	var session models.Session
	if err := json.Unmarshal([]byte(record.Data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", record.SessionID, err)
	}
	return &session, nil
}

// isNotFoundError reports whether the driver error means the record is
// simply absent.
func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

// Compile-time check
var _ interfaces.SessionStore = (*SessionStore)(nil)

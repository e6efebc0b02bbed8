package db

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"fitness-coach/internal/models"
	"fitness-coach/pkg/logger"
)

// Config holds connection settings for the plan-record database.
type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// PostgresStore persists completed sessions and retrieves similar past
// sessions. All operations are best-effort: on a degraded store (nil pool)
// or any query failure, callers get false/empty results and the service
// keeps running without persistence.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

func NewPostgresStore(cfg Config, log *logger.Logger) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	// Set connection pool parameters
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	// Connect with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection works
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool, logger: log}, nil
}

// NewDegraded returns a store without a backing database. Every operation
// logs and reports absence instead of failing.
func NewDegraded(log *logger.Logger) *PostgresStore {
	return &PostgresStore{logger: log}
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Upsert writes a plan record keyed by session id, overwriting an earlier
// record for the same session. Returns false on any failure.
func (s *PostgresStore) Upsert(ctx context.Context, rec *models.PlanRecord) bool {
	if s.pool == nil {
		s.logger.Warnw("Database not available, skipping session save", "session_id", rec.SessionID)
		return false
	}

	equipment, err := json.Marshal(rec.Equipment)
	if err != nil {
		s.logger.Errorw("Failed to encode equipment", "error", err, "session_id", rec.SessionID)
		return false
	}
	history, err := json.Marshal(rec.ChatHistory)
	if err != nil {
		s.logger.Errorw("Failed to encode chat history", "error", err, "session_id", rec.SessionID)
		return false
	}

	query := `
        INSERT INTO fitness_sessions (session_id, goal, age, weight, height, weekly_hours, equipment, chat_history, plan_text)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (session_id) DO UPDATE
        SET goal = $2, age = $3, weight = $4, height = $5, weekly_hours = $6,
            equipment = $7, chat_history = $8, plan_text = $9, updated_at = NOW()
    `

	_, err = s.pool.Exec(ctx, query,
		rec.SessionID, rec.Goal, rec.Age, rec.Weight, rec.Height,
		rec.WeeklyHours, string(equipment), history, rec.PlanText,
	)
	if err != nil {
		s.logger.Errorw("Failed to save plan record", "error", err, "session_id", rec.SessionID)
		return false
	}

	return true
}

// GetBySession fetches the persisted record for a session id. The second
// return value is false when the record is absent or the store is degraded.
func (s *PostgresStore) GetBySession(ctx context.Context, sessionID string) (*models.PlanRecord, bool) {
	if s.pool == nil {
		s.logger.Warnw("Database not available, cannot load plan", "session_id", sessionID)
		return nil, false
	}

	query := `
        SELECT session_id, goal, age, weight, height, weekly_hours, equipment, chat_history, plan_text, created_at, updated_at
        FROM fitness_sessions
        WHERE session_id = $1
    `

	var rec models.PlanRecord
	var equipment string
	var history []byte
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(
		&rec.SessionID, &rec.Goal, &rec.Age, &rec.Weight, &rec.Height,
		&rec.WeeklyHours, &equipment, &history, &rec.PlanText,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, false
	}

	rec.Equipment = decodeEquipment(equipment)
	if err := json.Unmarshal(history, &rec.ChatHistory); err != nil {
		rec.ChatHistory = nil
	}

	return &rec, true
}

// FindSimilar returns up to three past records with the same goal, ranked
// by absolute difference in weekly hours. Empty on any failure: learning
// context is optional enrichment, never a hard dependency.
func (s *PostgresStore) FindSimilar(ctx context.Context, goal string, weeklyHours float64) []models.PlanRecord {
	if s.pool == nil {
		s.logger.Warnw("Database not available, skipping similar sessions retrieval")
		return nil
	}

	query := `
        SELECT goal, weekly_hours, equipment, plan_text
        FROM fitness_sessions
        WHERE goal = $1
        ORDER BY weekly_hours ASC
        LIMIT 10
    `

	rows, err := s.pool.Query(ctx, query, goal)
	if err != nil {
		s.logger.Errorw("Failed to fetch similar sessions", "error", err)
		return nil
	}
	defer rows.Close()

	var records []models.PlanRecord
	for rows.Next() {
		var rec models.PlanRecord
		var equipment string
		if err := rows.Scan(&rec.Goal, &rec.WeeklyHours, &equipment, &rec.PlanText); err != nil {
			s.logger.Errorw("Failed to scan similar session row", "error", err)
			return nil
		}
		rec.Equipment = decodeEquipment(equipment)
		records = append(records, rec)
	}
	if rows.Err() != nil {
		s.logger.Errorw("Failed to read similar sessions", "error", rows.Err())
		return nil
	}

	return rankSimilar(records, weeklyHours)
}

// rankSimilar orders records by |weekly_hours - hours| and keeps the top 3.
func rankSimilar(records []models.PlanRecord, hours float64) []models.PlanRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return math.Abs(records[i].WeeklyHours-hours) < math.Abs(records[j].WeeklyHours-hours)
	})
	if len(records) > 3 {
		records = records[:3]
	}
	return records
}

// decodeEquipment tolerates the three encodings found in stored rows: a
// JSON array, a comma-joined string, or a single bare value.
func decodeEquipment(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		raw = single
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

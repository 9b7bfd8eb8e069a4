package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrStoreNotInitialized is returned when a StatsStore is used before Init.
var ErrStoreNotInitialized = errors.New("stats store is not initialized")

// StatsStore persists generation history in a SQLite database so runs can
// be compared across invocations.
type StatsStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewStatsStore creates a store for the database at path. Call Init before use.
func NewStatsStore(path string) *StatsStore {
	return &StatsStore{path: path}
}

// Init opens the database and creates tables if needed.
func (s *StatsStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening stats db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("opening stats db: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("creating tables: %w", err)
	}

	s.db = db
	return nil
}

// SaveGeneration inserts or replaces one generation record.
func (s *StatsStore) SaveGeneration(ctx context.Context, rec GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (
			run_id, generation, ticks,
			min_fitness, max_fitness, avg_fitness, std_fitness,
			p10_fitness, p50_fitness, p90_fitness,
			min_index, max_index, food_respawns
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			ticks = excluded.ticks,
			min_fitness = excluded.min_fitness,
			max_fitness = excluded.max_fitness,
			avg_fitness = excluded.avg_fitness,
			std_fitness = excluded.std_fitness,
			p10_fitness = excluded.p10_fitness,
			p50_fitness = excluded.p50_fitness,
			p90_fitness = excluded.p90_fitness,
			min_index = excluded.min_index,
			max_index = excluded.max_index,
			food_respawns = excluded.food_respawns
	`, rec.RunID, rec.Generation, rec.Ticks,
		rec.MinFitness, rec.MaxFitness, rec.AvgFitness, rec.StdFitness,
		rec.P10Fitness, rec.P50Fitness, rec.P90Fitness,
		rec.MinIndex, rec.MaxIndex, rec.FoodRespawns)
	if err != nil {
		return fmt.Errorf("saving generation %d: %w", rec.Generation, err)
	}
	return nil
}

// SaveMilestone appends a milestone.
func (s *StatsStore) SaveMilestone(ctx context.Context, m Milestone) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO milestones (run_id, generation, type, description)
		VALUES (?, ?, ?, ?)
	`, m.RunID, m.Generation, string(m.Type), m.Description)
	if err != nil {
		return fmt.Errorf("saving milestone: %w", err)
	}
	return nil
}

// Generations returns every stored record for a run, in generation order.
func (s *StatsStore) Generations(ctx context.Context, runID string) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, generation, ticks,
			min_fitness, max_fitness, avg_fitness, std_fitness,
			p10_fitness, p50_fitness, p90_fitness,
			min_index, max_index, food_respawns
		FROM generations
		WHERE run_id = ?
		ORDER BY generation
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var r GenerationRecord
		if err := rows.Scan(
			&r.RunID, &r.Generation, &r.Ticks,
			&r.MinFitness, &r.MaxFitness, &r.AvgFitness, &r.StdFitness,
			&r.P10Fitness, &r.P50Fitness, &r.P90Fitness,
			&r.MinIndex, &r.MaxIndex, &r.FoodRespawns,
		); err != nil {
			return nil, fmt.Errorf("scanning generation: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Milestones returns every stored milestone for a run, oldest first.
func (s *StatsStore) Milestones(ctx context.Context, runID string) ([]Milestone, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, generation, type, description
		FROM milestones
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying milestones: %w", err)
	}
	defer rows.Close()

	var milestones []Milestone
	for rows.Next() {
		var m Milestone
		var typ string
		if err := rows.Scan(&m.RunID, &m.Generation, &typ, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		m.Type = MilestoneType(typ)
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// Close closes the database. The store may be re-initialized afterwards.
func (s *StatsStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *StatsStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrStoreNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			min_fitness REAL NOT NULL,
			max_fitness REAL NOT NULL,
			avg_fitness REAL NOT NULL,
			std_fitness REAL NOT NULL,
			p10_fitness REAL NOT NULL,
			p50_fitness REAL NOT NULL,
			p90_fitness REAL NOT NULL,
			min_index INTEGER NOT NULL,
			max_index INTEGER NOT NULL,
			food_respawns INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS milestones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL
		);
	`)
	return err
}

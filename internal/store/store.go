// Package store persists canonical applications and assessment graphs as JSONB documents in
// Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
)

// Schema creates the tables Cases reads and writes. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS case_applications (
		case_reference TEXT PRIMARY KEY,
		source_system  TEXT NOT NULL,
		payload        JSONB NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assessments (
		case_reference TEXT NOT NULL,
		name           TEXT NOT NULL,
		payload        JSONB NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (case_reference, name)
	)`,
}

// ErrNotFound is returned when no row exists for the requested key.
var ErrNotFound = errors.New("store: not found")

// Cases reads and writes case_applications and assessments.
type Cases struct {
	db  *sql.DB
	now func() time.Time
}

func NewCases(db *sql.DB) *Cases {
	return &Cases{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const upsertApplication = `
	INSERT INTO case_applications (case_reference, source_system, payload, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (case_reference) DO UPDATE
	SET source_system = EXCLUDED.source_system,
		payload = EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at`

// SaveApplication upserts app under its case reference.
func (s *Cases) SaveApplication(ctx context.Context, system source.System, app models.Application) error {
	payload, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application %s: %w", app.CaseReferenceNumber, err)
	}
	if _, err := s.db.ExecContext(ctx, upsertApplication,
		app.CaseReferenceNumber, string(system), payload, s.now()); err != nil {
		return fmt.Errorf("save application %s: %w", app.CaseReferenceNumber, err)
	}
	return nil
}

// LoadApplication returns the stored application and the system it was mapped from.
func (s *Cases) LoadApplication(ctx context.Context, caseRef string) (models.Application, source.System, error) {
	var (
		system  string
		payload []byte
		app     models.Application
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT source_system, payload FROM case_applications WHERE case_reference = $1`,
		caseRef).Scan(&system, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return app, "", fmt.Errorf("application %s: %w", caseRef, ErrNotFound)
	}
	if err != nil {
		return app, "", fmt.Errorf("load application %s: %w", caseRef, err)
	}
	if err := json.Unmarshal(payload, &app); err != nil {
		return app, "", fmt.Errorf("decode application %s: %w", caseRef, err)
	}
	return app, source.System(system), nil
}

const upsertAssessment = `
	INSERT INTO assessments (case_reference, name, payload, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (case_reference, name) DO UPDATE
	SET payload = EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at`

// SaveGraph upserts g under its case reference and name.
func (s *Cases) SaveGraph(ctx context.Context, g *models.AssessmentGraph) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal assessment %s/%s: %w", g.CaseReferenceNumber, g.Name, err)
	}
	if _, err := s.db.ExecContext(ctx, upsertAssessment,
		g.CaseReferenceNumber, g.Name, payload, s.now()); err != nil {
		return fmt.Errorf("save assessment %s/%s: %w", g.CaseReferenceNumber, g.Name, err)
	}
	return nil
}

// LoadGraph returns the named graph, or nil without error when none was stored yet.
func (s *Cases) LoadGraph(ctx context.Context, caseRef, name string) (*models.AssessmentGraph, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM assessments WHERE case_reference = $1 AND name = $2`,
		caseRef, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load assessment %s/%s: %w", caseRef, name, err)
	}

	var g models.AssessmentGraph
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, fmt.Errorf("decode assessment %s/%s: %w", caseRef, name, err)
	}
	return &g, nil
}

// DeleteGraph removes a graph that no longer belongs to its case.
func (s *Cases) DeleteGraph(ctx context.Context, caseRef, name string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM assessments WHERE case_reference = $1 AND name = $2`, caseRef, name); err != nil {
		return fmt.Errorf("delete assessment %s/%s: %w", caseRef, name, err)
	}
	return nil
}

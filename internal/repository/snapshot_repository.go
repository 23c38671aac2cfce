package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rivalsense/internal/model"
)

const snapshotSchema = `
	CREATE TABLE IF NOT EXISTS company_snapshot (
		id           BIGSERIAL PRIMARY KEY,
		company_key  TEXT NOT NULL,
		company_name TEXT NOT NULL,
		payload      JSONB NOT NULL,
		collected_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS company_snapshot_key_idx ON company_snapshot(company_key, collected_at DESC);
`

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, snapshotSchema)
	return err
}

type snapshotPayload struct {
	Company    model.CompanyRecord       `json:"company"`
	Financials []model.FinancialSnapshot `json:"financials"`
}

func encodeSnapshot(s *model.CompanySnapshot) ([]byte, error) {
	return json.Marshal(snapshotPayload{Company: s.Company, Financials: s.Financials})
}

func decodeSnapshot(data []byte, s *model.CompanySnapshot) error {
	var p snapshotPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode snapshot %d: %w", s.ID, err)
	}
	s.Company = p.Company
	s.Financials = p.Financials
	return nil
}

// SaveSnapshot stores the snapshot and sets snapshot.ID.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *model.CompanySnapshot) error {
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO company_snapshot(company_key, company_name, payload, collected_at)
		VALUES($1, $2, $3, $4)
		RETURNING id
	`, snapshot.Key, snapshot.Company.Name, payload, snapshot.CollectedAt).Scan(&snapshot.ID)
}

// GetLatestSnapshot returns the newest snapshot for a company key, or nil when
// none exists.
func (r *SnapshotRepository) GetLatestSnapshot(ctx context.Context, key string) (*model.CompanySnapshot, error) {
	var s model.CompanySnapshot
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, company_key, payload, collected_at
		FROM company_snapshot
		WHERE company_key = $1
		ORDER BY collected_at DESC
		LIMIT 1
	`, key).Scan(&s.ID, &s.Key, &payload, &s.CollectedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if err := decodeSnapshot(payload, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// StoredResult is one persisted generation outcome
type StoredResult struct {
	ID        uuid.UUID              `json:"id"`
	OwnerID   string                 `json:"owner_id,omitempty"`
	Mode      string                 `json:"mode"`
	Model     string                 `json:"model"`
	Result    *types.GeneratedResult `json:"result"`
	Report    *types.QualityReport   `json:"report,omitempty"`
	Passed    bool                   `json:"passed"`
	CreatedAt time.Time              `json:"created_at"`
}

// SaveResult persists a generated result with its quality report and returns
// the record ID
func (db *DB) SaveResult(ctx context.Context, ownerID, mode, model string, result *types.GeneratedResult, report *types.QualityReport) (uuid.UUID, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var reportJSON []byte
	passed := false
	if report != nil {
		reportJSON, err = json.Marshal(report)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		passed = report.Passed
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO generated_results (id, owner_id, mode, model, result, report, passed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, ownerID, mode, model, resultJSON, reportJSON, passed,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save result: %w", err)
	}
	return id, nil
}

// GetResult retrieves a stored result by ID, or nil if not found
func (db *DB) GetResult(ctx context.Context, id uuid.UUID) (*StoredResult, error) {
	var stored StoredResult
	var ownerID *string
	var resultJSON, reportJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, mode, model, result, report, passed, created_at
		 FROM generated_results WHERE id = $1`,
		id,
	).Scan(&stored.ID, &ownerID, &stored.Mode, &stored.Model, &resultJSON, &reportJSON, &stored.Passed, &stored.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if ownerID != nil {
		stored.OwnerID = *ownerID
	}
	if err := json.Unmarshal(resultJSON, &stored.Result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &stored.Report); err != nil {
			return nil, fmt.Errorf("failed to decode stored report: %w", err)
		}
	}
	return &stored, nil
}

// ListResults retrieves recent results for an owner, newest first
func (db *DB) ListResults(ctx context.Context, ownerID string, limit int) ([]StoredResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, owner_id, mode, model, result, report, passed, created_at
		 FROM generated_results WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var stored StoredResult
		var owner *string
		var resultJSON, reportJSON []byte
		if err := rows.Scan(&stored.ID, &owner, &stored.Mode, &stored.Model, &resultJSON, &reportJSON, &stored.Passed, &stored.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if owner != nil {
			stored.OwnerID = *owner
		}
		if err := json.Unmarshal(resultJSON, &stored.Result); err != nil {
			return nil, fmt.Errorf("failed to decode stored result: %w", err)
		}
		if len(reportJSON) > 0 {
			if err := json.Unmarshal(reportJSON, &stored.Report); err != nil {
				return nil, fmt.Errorf("failed to decode stored report: %w", err)
			}
		}
		results = append(results, stored)
	}
	return results, rows.Err()
}

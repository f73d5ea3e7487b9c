package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT NOT NULL,
    row_index INTEGER NOT NULL,
    predicted_label INTEGER NOT NULL,
    probability REAL,
    n_features INTEGER NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_request ON predictions(request_id);
`

// PredictionRecord is one classified row.
type PredictionRecord struct {
	RequestID      string    `json:"request_id"`
	RowIndex       int       `json:"row_index"`
	PredictedLabel int       `json:"predicted_label"`
	Probability    *float64  `json:"probability,omitempty"`
	Features       int       `json:"n_features"`
	CreatedAt      time.Time `json:"created_at"`
}

// PredictionStore keeps an append-only log of served predictions in SQLite.
type PredictionStore struct {
	db *sql.DB
}

// OpenPredictionStore opens (creating if needed) the SQLite file at path.
func OpenPredictionStore(path string) (*PredictionStore, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PredictionStore{db: database}, nil
}

// SavePredictions records every row of one request in a single transaction.
// probabilities may be nil; otherwise it must have one entry per label.
func (s *PredictionStore) SavePredictions(ctx context.Context, requestID string, features int, labels []int, probabilities []float64) error {
	if probabilities != nil && len(probabilities) != len(labels) {
		return errors.New("predictions/probabilities length mismatch")
	}
	if len(labels) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO predictions (
            request_id, row_index, predicted_label, probability, n_features, created_at
        ) VALUES (?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, label := range labels {
		var p sql.NullFloat64
		if probabilities != nil {
			p = sql.NullFloat64{Float64: probabilities[i], Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, requestID, i, label, p, features, now); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Recent returns the latest records, newest first.
func (s *PredictionStore) Recent(ctx context.Context, limit int) ([]PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT request_id, row_index, predicted_label, probability, n_features, created_at
        FROM predictions
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var r PredictionRecord
		var p sql.NullFloat64
		if err := rows.Scan(&r.RequestID, &r.RowIndex, &r.PredictedLabel, &p, &r.Features, &r.CreatedAt); err != nil {
			return nil, err
		}
		if p.Valid {
			v := p.Float64
			r.Probability = &v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PredictionStore) Close() error {
	return s.db.Close()
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
)

// Ensure verificationStore implements the interface.
var _ driven.VerificationStore = (*verificationStore)(nil)

type verificationStore struct {
	db *sql.DB
}

const verificationColumns = `id, case_id, request_id, model_version, pass, message, mismatches,
	original_decision, replay_decision, original_risk_score, replay_risk_score,
	original_fingerprint, replay_fingerprint, created_at`

func (s *verificationStore) Save(ctx context.Context, r domain.VerificationRecord) error {
	mismatches := r.Mismatches
	if mismatches == nil {
		mismatches = []domain.Mismatch{}
	}
	mismatchesJSON, err := json.Marshal(mismatches)
	if err != nil {
		return fmt.Errorf("marshaling mismatches: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verifications (`+verificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		r.ID, r.CaseID, r.RequestID, r.ModelVersion, r.Pass, r.Message, string(mismatchesJSON),
		r.OriginalDecision, r.ReplayDecision, r.OriginalRiskScore.String(), r.ReplayRiskScore.String(),
		r.OriginalFingerprint, r.ReplayFingerprint, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving verification: %w", err)
	}
	return nil
}

func (s *verificationStore) Get(ctx context.Context, id string) (*domain.VerificationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+verificationColumns+` FROM verifications WHERE id = ?`, id)
	record, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *verificationStore) List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultHistoryListLimit
	}

	query := `SELECT ` + verificationColumns + ` FROM verifications`
	args := []any{}
	if filter.CaseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, filter.CaseID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing verifications: %w", err)
	}
	defer rows.Close()

	var records []domain.VerificationRecord
	for rows.Next() {
		record, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verifications: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerification(row rowScanner) (*domain.VerificationRecord, error) {
	var (
		r              domain.VerificationRecord
		mismatchesJSON string
		origScore      string
		replayScore    string
		createdAt      int64
	)
	err := row.Scan(
		&r.ID, &r.CaseID, &r.RequestID, &r.ModelVersion, &r.Pass, &r.Message, &mismatchesJSON,
		&r.OriginalDecision, &r.ReplayDecision, &origScore, &replayScore,
		&r.OriginalFingerprint, &r.ReplayFingerprint, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning verification: %w", err)
	}

	if err := json.Unmarshal([]byte(mismatchesJSON), &r.Mismatches); err != nil {
		return nil, fmt.Errorf("unmarshaling mismatches: %w", err)
	}
	if len(r.Mismatches) == 0 {
		r.Mismatches = nil
	}
	r.OriginalRiskScore = domain.Number(origScore)
	r.ReplayRiskScore = domain.Number(replayScore)
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}

package consent

import (
	"context"
	"fmt"
	"time"

	id "medgate/pkg/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads consent records from the consent system's table.
//
// Expected schema:
//
//	CREATE TABLE consent_records (
//	    subject_id uuid        NOT NULL,
//	    purpose    text        NOT NULL,
//	    scope      text[]      NOT NULL,
//	    granted_at timestamptz NOT NULL,
//	    expires_at timestamptz
//	);
//	CREATE INDEX consent_records_subject_purpose_idx
//	    ON consent_records (subject_id, purpose);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.PrincipalID, purpose id.OperationKind) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT subject_id, purpose, scope, granted_at, expires_at
		FROM consent_records
		WHERE subject_id = $1 AND purpose = $2
	`, uuid.UUID(subjectID), purpose.String())
	if err != nil {
		return nil, fmt.Errorf("query consent records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			subject   uuid.UUID
			rawKind   string
			rawScope  []string
			grantedAt time.Time
			expiresAt *time.Time
		)
		if err := rows.Scan(&subject, &rawKind, &rawScope, &grantedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan consent record: %w", err)
		}
		scope := make([]id.DataCategory, 0, len(rawScope))
		for _, c := range rawScope {
			scope = append(scope, id.DataCategory(c))
		}
		out = append(out, Record{
			SubjectID: id.PrincipalID(subject),
			Purpose:   id.OperationKind(rawKind),
			Scope:     scope,
			GrantedAt: grantedAt,
			ExpiresAt: expiresAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent records: %w", err)
	}
	return out, nil
}

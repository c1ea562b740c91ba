package scrub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type resultRepoPG struct {
	pool *pgxpool.Pool
	tx   *db.TxManager
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &resultRepoPG{pool: pool, tx: db.NewTxManager(pool)}
}

func (r *resultRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *resultRepoPG) Replace(ctx context.Context, claimID uuid.UUID, results []Result, at time.Time) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		q := r.conn(ctx)

		// row lock serializes concurrent runs for the claim
		var locked uuid.UUID
		err := q.QueryRow(ctx, `SELECT id FROM claim WHERE id = $1 FOR UPDATE`, claimID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return claim.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock claim: %w", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM claim_validation_result WHERE claim_id = $1`, claimID); err != nil {
			return fmt.Errorf("delete previous results: %w", err)
		}

		for i, res := range results {
			var md []byte
			if len(res.Metadata) > 0 {
				if md, err = json.Marshal(res.Metadata); err != nil {
					return fmt.Errorf("encode metadata for %s: %w", res.CheckType, err)
				}
			}
			_, err := q.Exec(ctx, `
				INSERT INTO claim_validation_result (id, claim_id, position, check_type, status,
					denial_code, message, remediation, metadata, validated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				uuid.New(), claimID, i, string(res.CheckType), string(res.Status),
				res.DenialCode, res.Message, res.Remediation, md, at)
			if err != nil {
				return fmt.Errorf("insert %s result: %w", res.CheckType, err)
			}
		}
		return nil
	})
}

func (r *resultRepoPG) GetByClaim(ctx context.Context, claimID uuid.UUID) ([]Result, time.Time, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT check_type, status, denial_code, message, remediation, metadata, validated_at
		FROM claim_validation_result
		WHERE claim_id = $1
		ORDER BY position`, claimID)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	var (
		results []Result
		at      time.Time
	)
	for rows.Next() {
		var (
			res         Result
			checkType   string
			status      string
			md          []byte
			validatedAt time.Time
		)
		if err := rows.Scan(&checkType, &status, &res.DenialCode, &res.Message, &res.Remediation, &md, &validatedAt); err != nil {
			return nil, time.Time{}, err
		}
		res.CheckType = CheckType(checkType)
		res.Status = Status(status)
		if len(md) > 0 {
			if err := json.Unmarshal(md, &res.Metadata); err != nil {
				return nil, time.Time{}, fmt.Errorf("decode metadata for %s: %w", checkType, err)
			}
		}
		results = append(results, res)
		at = validatedAt
	}
	return results, at, rows.Err()
}

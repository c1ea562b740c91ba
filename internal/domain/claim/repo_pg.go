package claim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claimscrub/scrubber/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type claimRepoPG struct {
	pool *pgxpool.Pool
	tx   *db.TxManager
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &claimRepoPG{pool: pool, tx: db.NewTxManager(pool)}
}

func (r *claimRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const claimCols = `id, patient_id, patient_name, patient_dob, payer_id, provider_npi,
	specialty, date_of_service, place_of_service, prior_auth_number,
	status, score, validated_at, submitted_at, response_codes, response_note,
	created_at, updated_at`

const lineCols = `id, claim_id, line_number, cpt_code, modifiers, icd_codes,
	drug_code, drug_units, drug_discarded_units, units, charge_amount`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.PatientID, &c.PatientName, &c.PatientDOB, &c.PayerID, &c.ProviderNPI,
		&c.Specialty, &c.DateOfService, &c.PlaceOfService, &c.PriorAuthNumber,
		&c.Status, &c.Score, &c.ValidatedAt, &c.SubmittedAt, &c.ResponseCodes, &c.ResponseNote,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func scanLine(row pgx.Row) (ServiceLine, error) {
	var l ServiceLine
	err := row.Scan(&l.ID, &l.ClaimID, &l.LineNumber, &l.CPTCode, &l.Modifiers, &l.ICDCodes,
		&l.DrugCode, &l.DrugUnits, &l.DrugDiscardedUnits, &l.Units, &l.ChargeAmount)
	return l, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *claimRepoPG) Create(ctx context.Context, c *Claim) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		c.ID = uuid.New()
		now := time.Now().UTC()
		c.CreatedAt, c.UpdatedAt = now, now
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO claim (id, patient_id, patient_name, patient_dob, payer_id, provider_npi,
				specialty, date_of_service, place_of_service, prior_auth_number, status,
				response_codes, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			c.ID, c.PatientID, c.PatientName, c.PatientDOB, c.PayerID, c.ProviderNPI,
			c.Specialty, c.DateOfService, c.PlaceOfService, c.PriorAuthNumber, c.Status,
			nonNil(c.ResponseCodes), c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert claim: %w", err)
		}

		for i := range c.ServiceLines {
			l := &c.ServiceLines[i]
			l.ID = uuid.New()
			l.ClaimID = c.ID
			_, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO service_line (`+lineCols+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				l.ID, l.ClaimID, l.LineNumber, l.CPTCode, nonNil(l.Modifiers), nonNil(l.ICDCodes),
				l.DrugCode, l.DrugUnits, l.DrugDiscardedUnits, l.Units, l.ChargeAmount)
			if err != nil {
				return fmt.Errorf("insert service line %d: %w", l.LineNumber, err)
			}
		}
		return nil
	})
}

func (r *claimRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := scanClaim(r.conn(ctx).QueryRow(ctx, `SELECT `+claimCols+` FROM claim WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+lineCols+` FROM service_line WHERE claim_id = $1 ORDER BY line_number`, id)
	if err != nil {
		return nil, fmt.Errorf("query service lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service line: %w", err)
		}
		c.ServiceLines = append(c.ServiceLines, l)
	}
	return c, rows.Err()
}

// List returns claims without their service lines.
func (r *claimRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	var where []string
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}
	if filter.PayerID != "" {
		add("payer_id", filter.PayerID)
	}
	if filter.PatientID != "" {
		add("patient_id", filter.PatientID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM claim`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM claim%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			claimCols, clause, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *claimRepoPG) UpdateStatus(ctx context.Context, c *Claim) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE claim SET status=$2, submitted_at=$3, response_codes=$4, response_note=$5, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Status, c.SubmittedAt, nonNil(c.ResponseCodes), c.ResponseNote)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *claimRepoPG) RecordValidation(ctx context.Context, id uuid.UUID, score int, status Status, at time.Time) (Status, error) {
	var result Status
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE claim SET score=$2, validated_at=$4, updated_at=NOW(),
			status = CASE WHEN status IN ('DRAFT','VALIDATED') THEN $3 ELSE status END
		WHERE id = $1
		RETURNING status`,
		id, score, status, at).Scan(&result)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return result, err
}

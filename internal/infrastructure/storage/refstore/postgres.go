package refstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/billtype"
	"vcbot/internal/domain/reference"
	"vcbot/pkg/logger"
)

// PostgresStore persists the reference mapping in a bill_references table.
// Same contract as FileStore behind the reference.Store interface; the save
// is all-or-nothing because every upsert runs inside one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresStore creates the store and bootstraps its schema.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) (*PostgresStore, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bill_references (
			bill_type        TEXT PRIMARY KEY,
			reference_number BIGINT NOT NULL CHECK (reference_number >= 0),
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create bill_references table: %w", err)
	}
	return &PostgresStore{pool: pool, log: log.WithComponent("refstore.postgres")}, nil
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// pgRecord maps one bill_references row.
type pgRecord struct {
	BillType  string    `db:"bill_type"`
	Number    int64     `db:"reference_number"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Load implements reference.Store.
func (s *PostgresStore) Load(ctx context.Context) (map[billtype.BillType]reference.Reference, error) {
	sql, args, err := builder().
		Select("bill_type", "reference_number", "created_at", "updated_at").
		From("bill_references").
		ToSql()
	if err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("build select: %w", err))
	}

	var rows []pgRecord
	if err := pgxscan.Select(ctx, s.pool, &rows, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("select bill_references: %w", err))
	}

	refs := make(map[billtype.BillType]reference.Reference, len(rows))
	for _, row := range rows {
		bt, err := billtype.Parse(row.BillType)
		if err != nil {
			s.log.Warnw("skipping unknown bill type in reference table", "bill_type", row.BillType)
			continue
		}
		if row.Number < 0 {
			return nil, apperror.NewCorruptStore("bill_references", fmt.Errorf("bill type %s: negative reference number %d", bt, row.Number))
		}
		refs[bt] = reference.Reference{
			BillType:  bt,
			Number:    row.Number,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return refs, nil
}

// Save implements reference.Store.
func (s *PostgresStore) Save(ctx context.Context, refs map[billtype.BillType]reference.Reference) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for bt, rec := range refs {
		if !bt.Valid() {
			return apperror.NewInvalidBillType(bt.String())
		}

		sql, args, err := builder().
			Insert("bill_references").
			Columns("bill_type", "reference_number", "created_at", "updated_at").
			Values(bt.String(), rec.Number, rec.CreatedAt, rec.UpdatedAt).
			Suffix(`ON CONFLICT (bill_type) DO UPDATE SET
				reference_number = EXCLUDED.reference_number,
				updated_at = EXCLUDED.updated_at`).
			ToSql()
		if err != nil {
			return apperror.NewPersistence(fmt.Errorf("build upsert: %w", err))
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return apperror.NewPersistence(fmt.Errorf("upsert %s: %w", bt, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewPersistence(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Ensure compile-time interface compliance.
var _ reference.Store = (*PostgresStore)(nil)

package store

import (
	"context"
	"fmt"
	"time"

	"kisansarathi/internal/utils"
	"kisansarathi/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	schemeTableName                 = "schemes"
	schemeRequiredDocumentTableName = "scheme_required_documents"
)

var (
	schemeColumns                 = utils.StructTagValues(types.Scheme{})
	schemeRequiredDocumentColumns = utils.StructTagValues(types.SchemeRequiredDocument{})
)

type SchemeRepository struct {
	pool *pgxpool.Pool
}

func NewSchemeRepository(pool *pgxpool.Pool) *SchemeRepository {
	return &SchemeRepository{pool: pool}
}

// Schemes lists schemes matching filter with their required documents attached
func (r *SchemeRepository) Schemes(ctx context.Context, filter types.SchemeFilter) ([]*types.Scheme, error) {
	builder := psql().
		Select(schemeColumns...).
		From(schemeTableName).
		OrderBy("last_updated DESC", "scheme_name ASC")

	if filter.State != "" {
		builder = builder.Where(sq.ILike{"state": filter.State})
	}
	if filter.CropType != "" {
		builder = builder.Where(sq.ILike{"crop_type": filter.CropType})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schemes query: %w", err)
	}

	schemes := make([]*types.Scheme, 0)
	err = pgxscan.Select(ctx, r.pool, &schemes, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schemes: %w", err)
	}

	if err := r.attachRequiredDocuments(ctx, schemes); err != nil {
		return nil, err
	}

	return schemes, nil
}

func (r *SchemeRepository) Scheme(ctx context.Context, schemeID string) (*types.Scheme, error) {
	query, args, err := psql().
		Select(schemeColumns...).
		From(schemeTableName).
		Where(sq.Eq{"id": schemeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate scheme query: %w", err)
	}

	var scheme = new(types.Scheme)
	err = pgxscan.Get(ctx, r.pool, scheme, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSchemeNotFound
		}
		return nil, fmt.Errorf("failed to fetch scheme: %w", err)
	}

	if err := r.attachRequiredDocuments(ctx, []*types.Scheme{scheme}); err != nil {
		return nil, err
	}

	return scheme, nil
}

// attachRequiredDocuments loads requirements for every scheme in one query.
func (r *SchemeRepository) attachRequiredDocuments(ctx context.Context, schemes []*types.Scheme) error {
	if len(schemes) == 0 {
		return nil
	}

	byID := make(map[string]*types.Scheme, len(schemes))
	ids := make([]string, 0, len(schemes))
	for _, scheme := range schemes {
		scheme.RequiredDocuments = make([]string, 0)
		byID[scheme.ID] = scheme
		ids = append(ids, scheme.ID)
	}

	query, args, err := psql().
		Select(schemeRequiredDocumentColumns...).
		From(schemeRequiredDocumentTableName).
		Where(sq.Eq{"scheme_id": ids}).
		OrderBy("scheme_id ASC", "position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate required documents query: %w", err)
	}

	var rows []*types.SchemeRequiredDocument
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return fmt.Errorf("failed to fetch required documents: %w", err)
	}

	for _, row := range rows {
		if scheme, ok := byID[row.SchemeID]; ok {
			scheme.RequiredDocuments = append(scheme.RequiredDocuments, row.DocType)
		}
	}

	return nil
}

// CreateScheme inserts a scheme and its required documents in one transaction
func (r *SchemeRepository) CreateScheme(ctx context.Context, scheme *types.Scheme) error {
	now := time.Now()
	if scheme.ID == "" {
		scheme.ID = utils.NanoID()
	}
	scheme.CreatedAt = now
	scheme.LastUpdated = now

	return r.withTx(ctx, func(tx pgx.Tx) error {
		query, args, err := psql().
			Insert(schemeTableName).
			SetMap(utils.StructToMap(scheme)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert scheme query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert scheme: %w", err)
		}

		return insertRequiredDocuments(ctx, tx, scheme)
	})
}

// UpsertScheme creates or replaces a scheme by ID, including its requirements.
func (r *SchemeRepository) UpsertScheme(ctx context.Context, scheme *types.Scheme) error {
	now := time.Now()
	scheme.LastUpdated = now
	if scheme.CreatedAt.IsZero() {
		scheme.CreatedAt = now
	}

	schemeMap := utils.StructToMap(scheme)

	return r.withTx(ctx, func(tx pgx.Tx) error {
		query, args, err := psql().
			Insert(schemeTableName).
			SetMap(schemeMap).
			Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(schemeMap, "id", "created_at")).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate upsert scheme query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to upsert scheme: %w", err)
		}

		query, args, err = psql().
			Delete(schemeRequiredDocumentTableName).
			Where(sq.Eq{"scheme_id": scheme.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete required documents query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear required documents: %w", err)
		}

		return insertRequiredDocuments(ctx, tx, scheme)
	})
}

func insertRequiredDocuments(ctx context.Context, tx pgx.Tx, scheme *types.Scheme) error {
	if len(scheme.RequiredDocuments) == 0 {
		return nil
	}

	builder := psql().
		Insert(schemeRequiredDocumentTableName).
		Columns("scheme_id", "doc_type", "position")

	for i, docType := range scheme.RequiredDocuments {
		builder = builder.Values(scheme.ID, docType, i)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert required documents query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert required documents: %w", err)
	}

	return nil
}

func (r *SchemeRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

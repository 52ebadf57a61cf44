package store

import (
	"context"
	"fmt"
	"time"

	"kisansarathi/internal/utils"
	"kisansarathi/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentTableName = "documents"

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// DocumentsByFarmer returns a farmer's documents, newest first
func (r *DocumentRepository) DocumentsByFarmer(ctx context.Context, farmerID string) ([]*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"farmer_id": farmerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	docs := make([]*types.Document, 0)
	err = pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return docs, nil
}

// Document retrieves a document only if it belongs to farmerID
func (r *DocumentRepository) Document(ctx context.Context, farmerID, documentID string) (*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"id": documentID, "farmer_id": farmerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var doc = new(types.Document)
	err = pgxscan.Get(ctx, r.pool, doc, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return doc, nil
}

// ReplaceDocument stores doc as the farmer's only document of its type.
// Rows it displaced are returned so their objects can be cleaned up.
func (r *DocumentRepository) ReplaceDocument(ctx context.Context, doc *types.Document) ([]*types.Document, error) {
	if doc.ID == "" {
		doc.ID = utils.NanoID()
	}
	doc.CreatedAt = time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Delete(documentTableName).
		Where(sq.Eq{"farmer_id": doc.FarmerID, "doc_type": doc.DocType}).
		Suffix("RETURNING " + joinColumns(documentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate replace documents query: %w", err)
	}

	replaced := make([]*types.Document, 0)
	err = pgxscan.Select(ctx, tx, &replaced, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to remove previous documents: %w", err)
	}

	query, args, err = psql().
		Insert(documentTableName).
		SetMap(utils.StructToMap(doc)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate insert document query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return replaced, nil
}

// DeleteDocument removes a document row scoped to its owner
func (r *DocumentRepository) DeleteDocument(ctx context.Context, farmerID, documentID string) error {
	query, args, err := psql().
		Delete(documentTableName).
		Where(sq.Eq{"id": documentID, "farmer_id": farmerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete document")
}

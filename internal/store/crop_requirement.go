package store

import (
	"context"
	"fmt"

	"kisansarathi/internal/utils"
	"kisansarathi/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cropRequirementTableName = "crop_requirements"

var cropRequirementColumns = utils.StructTagValues(types.CropRequirement{})

type CropRequirementRepository struct {
	pool *pgxpool.Pool
}

func NewCropRequirementRepository(pool *pgxpool.Pool) *CropRequirementRepository {
	return &CropRequirementRepository{pool: pool}
}

func (r *CropRequirementRepository) CropRequirement(ctx context.Context, cropName string) (*types.CropRequirement, error) {
	query, args, err := psql().
		Select(cropRequirementColumns...).
		From(cropRequirementTableName).
		Where(sq.Eq{"crop_name": cropName}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate crop requirement query: %w", err)
	}

	var crop = new(types.CropRequirement)
	err = pgxscan.Get(ctx, r.pool, crop, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCropNotFound
		}
		return nil, fmt.Errorf("failed to fetch crop requirement: %w", err)
	}

	return crop, nil
}

func (r *CropRequirementRepository) CropRequirements(ctx context.Context) ([]*types.CropRequirement, error) {
	query, args, err := psql().
		Select(cropRequirementColumns...).
		From(cropRequirementTableName).
		OrderBy("crop_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate crop requirements query: %w", err)
	}

	crops := make([]*types.CropRequirement, 0)
	err = pgxscan.Select(ctx, r.pool, &crops, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch crop requirements: %w", err)
	}

	return crops, nil
}

func (r *CropRequirementRepository) UpsertCropRequirement(ctx context.Context, crop *types.CropRequirement) error {
	cropMap := utils.StructToMap(crop)

	query, args, err := psql().
		Insert(cropRequirementTableName).
		SetMap(cropMap).
		Suffix("ON CONFLICT (crop_name) DO UPDATE SET " + buildUpdateClause(cropMap, "crop_name")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert crop requirement query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert crop requirement %s: %w", crop.CropName, err)
	}

	return nil
}

func (r *CropRequirementRepository) DeleteCropRequirement(ctx context.Context, cropName string) error {
	query, args, err := psql().
		Delete(cropRequirementTableName).
		Where(sq.Eq{"crop_name": cropName}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete crop requirement query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete crop requirement")
}

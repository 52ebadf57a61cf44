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

const soilReportTableName = "soil_reports"

var soilReportColumns = utils.StructTagValues(types.SoilReport{})

type SoilReportRepository struct {
	pool *pgxpool.Pool
}

func NewSoilReportRepository(pool *pgxpool.Pool) *SoilReportRepository {
	return &SoilReportRepository{pool: pool}
}

func (r *SoilReportRepository) CreateSoilReport(ctx context.Context, report *types.SoilReport) error {
	report.ID = utils.NanoID()
	report.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(soilReportTableName).
		SetMap(utils.StructToMap(report)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert soil report query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create soil report")
}

// LatestSoilReport returns the farmer's most recent analysis
func (r *SoilReportRepository) LatestSoilReport(ctx context.Context, farmerID string) (*types.SoilReport, error) {
	query, args, err := psql().
		Select(soilReportColumns...).
		From(soilReportTableName).
		Where(sq.Eq{"farmer_id": farmerID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate latest soil report query: %w", err)
	}

	var report = new(types.SoilReport)
	err = pgxscan.Get(ctx, r.pool, report, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSoilReportNotFound
		}
		return nil, fmt.Errorf("failed to fetch soil report: %w", err)
	}

	return report, nil
}

func (r *SoilReportRepository) SoilReportsByFarmer(ctx context.Context, farmerID string) ([]*types.SoilReport, error) {
	query, args, err := psql().
		Select(soilReportColumns...).
		From(soilReportTableName).
		Where(sq.Eq{"farmer_id": farmerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate soil reports query: %w", err)
	}

	reports := make([]*types.SoilReport, 0)
	err = pgxscan.Select(ctx, r.pool, &reports, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch soil reports: %w", err)
	}

	return reports, nil
}

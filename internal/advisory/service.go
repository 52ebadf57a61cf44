package advisory

import (
	"context"
	"errors"
	"fmt"

	"kisansarathi/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type SoilReportSource interface {
	LatestSoilReport(ctx context.Context, farmerID string) (*types.SoilReport, error)
}

type CropSource interface {
	CropRequirement(ctx context.Context, cropName string) (*types.CropRequirement, error)
}

type WeatherSource interface {
	Current(ctx context.Context, loc types.Location) (*types.Weather, error)
}

type Service struct {
	logger  *logrus.Logger
	soil    SoilReportSource
	crops   CropSource
	weather WeatherSource
}

// NewService builds the crop advisor. weather may be nil, in which case
// recommendations carry no weather block.
func NewService(logger *logrus.Logger, soil SoilReportSource, crops CropSource, weather WeatherSource) *Service {
	return &Service{
		logger:  logger,
		soil:    soil,
		crops:   crops,
		weather: weather,
	}
}

// RecommendCrop compares the farmer's latest soil report against the crop's
// nutrient minimums. Weather lookups never fail the recommendation.
func (s *Service) RecommendCrop(ctx context.Context, farmerID, cropName string, loc types.Location) (*types.CropRecommendation, error) {
	var (
		report  *types.SoilReport
		crop    *types.CropRequirement
		weather *types.Weather
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.soil.LatestSoilReport(gctx, farmerID)
		return err
	})
	g.Go(func() error {
		var err error
		crop, err = s.crops.CropRequirement(gctx, cropName)
		return err
	})
	if s.weather != nil {
		g.Go(func() error {
			w, err := s.weather.Current(gctx, loc)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.WithError(err).WithField("crop", cropName).Warn("weather lookup failed")
				}
				return nil
			}
			weather = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, types.ErrSoilReportNotFound) || errors.Is(err, types.ErrCropNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load recommendation inputs: %w", err)
	}

	nutrients := report.EstimatedNutrients
	if nutrients == nil {
		nutrients = types.Nutrients{}
	}

	return &types.CropRecommendation{
		Crop:            cropName,
		SoilType:        report.SoilType,
		Nutrients:       nutrients,
		Recommendations: Recommend(nutrients, crop),
		WaterNeed:       crop.WaterNeed,
		Climate:         crop.Climate,
		Location:        loc,
		Weather:         weather,
	}, nil
}

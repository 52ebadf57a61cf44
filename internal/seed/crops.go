package seed

import (
	"context"
	"fmt"
	"io"

	"kisansarathi/internal/utils"
	"kisansarathi/pkg/types"
)

type CropRequirementStore interface {
	CropRequirements(ctx context.Context) ([]*types.CropRequirement, error)
	UpsertCropRequirement(ctx context.Context, crop *types.CropRequirement) error
	DeleteCropRequirement(ctx context.Context, cropName string) error
}

// Crops is the source of truth for crop nutrient minimums (kg/ha).
// To add a crop: add it here and run `kisansarathi seed`.
// Crops removed from this list are deleted from the database on the next run.
var Crops = []types.CropRequirement{
	crop("wheat", 40, 20, 20, 10, "medium", "cool, dry"),
	crop("rice", 50, 25, 25, 12, "high", "hot, humid"),
	crop("cotton", 45, 20, 30, 10, "medium", "warm, dry"),
	crop("sugarcane", 60, 30, 40, 15, "high", "tropical"),
	crop("soybean", 20, 30, 25, 15, "medium", "warm"),
	crop("maize", 45, 25, 25, 10, "medium", "warm"),
	crop("groundnut", 15, 25, 20, 20, "low", "warm, dry"),
	crop("jowar", 35, 15, 15, 8, "low", "semi-arid"),
}

func crop(name string, n, p, k, s float64, water, climate string) types.CropRequirement {
	return types.CropRequirement{
		CropName:      name,
		NitrogenMin:   utils.Float64Ptr(n),
		PhosphorusMin: utils.Float64Ptr(p),
		PotassiumMin:  utils.Float64Ptr(k),
		SulphurMin:    utils.Float64Ptr(s),
		WaterNeed:     utils.StringPtr(water),
		Climate:       utils.StringPtr(climate),
	}
}

// SyncCrops makes the crop_requirements table match Crops.
func SyncCrops(ctx context.Context, out io.Writer, repo CropRequirementStore) error {
	fmt.Fprintln(out, "Starting crop requirement sync...")
	fmt.Fprintf(out, "  Seed file contains %d crops\n", len(Crops))

	seedNames := make(map[string]bool, len(Crops))
	for _, c := range Crops {
		seedNames[c.CropName] = true
	}

	existing, err := repo.CropRequirements(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch existing crop requirements: %w", err)
	}
	fmt.Fprintf(out, "  Database contains %d crops\n", len(existing))

	deletedCount := 0
	for _, e := range existing {
		if seedNames[e.CropName] {
			continue
		}
		fmt.Fprintf(out, "  Deleting crop: %s\n", e.CropName)
		if err := repo.DeleteCropRequirement(ctx, e.CropName); err != nil {
			return fmt.Errorf("failed to delete crop %s: %w", e.CropName, err)
		}
		deletedCount++
	}

	upsertedCount := 0
	for _, c := range Crops {
		fmt.Fprintf(out, "  Upserting crop: %s\n", c.CropName)
		if err := repo.UpsertCropRequirement(ctx, &c); err != nil {
			return fmt.Errorf("failed to upsert crop %s: %w", c.CropName, err)
		}
		upsertedCount++
	}

	fmt.Fprintf(out, "\nCrop sync complete: %d upserted, %d deleted\n", upsertedCount, deletedCount)
	return nil
}

package seed

import (
	"context"
	"fmt"
	"io"

	"kisansarathi/pkg/types"
)

type SchemeStore interface {
	UpsertScheme(ctx context.Context, scheme *types.Scheme) error
}

// DemoSchemes have fixed IDs so re-seeding updates rather than duplicates.
// Schemes created through the admin API are never touched.
// To generate new IDs: `kisansarathi nanoid`
var DemoSchemes = []types.Scheme{
	{
		ID:                "pQ1u8ZyH0kV3c7LmT9sRb2Xa",
		Name:              "PM-KISAN Samman Nidhi",
		State:             "All India",
		CropType:          "All crops",
		SummaryText:       "Income support of Rs 6,000 per year in three instalments to landholding farmer families.",
		RequiredDocuments: []string{types.DocTypeAadhaar, types.DocTypeLandReport, types.DocTypeBankPassbook},
	},
	{
		ID:                "Vb6nR3wE8qT1yU5iO0pA4sDf",
		Name:              "Pradhan Mantri Fasal Bima Yojana",
		State:             "All India",
		CropType:          "Kharif and Rabi crops",
		SummaryText:       "Crop insurance against yield loss from natural calamities, pests and disease.",
		RequiredDocuments: []string{types.DocTypeAadhaar, types.DocTypeSevenTwelve, types.DocTypeBankPassbook},
	},
	{
		ID:                "Gh7jK2lZ9xC4vB8nM1qW5eRt",
		Name:              "Soil Health Card Scheme",
		State:             "All India",
		CropType:          "All crops",
		SummaryText:       "Free soil testing with crop-wise nutrient and fertiliser recommendations.",
		RequiredDocuments: []string{types.DocTypeAadhaar, types.DocTypeSoilReport},
	},
	{
		ID:                "Yu3iO6pA9sD2fG5hJ8kL1zXc",
		Name:              "Namo Shetkari Maha Samman Nidhi",
		State:             "Maharashtra",
		CropType:          "All crops",
		SummaryText:       "State top-up of Rs 6,000 per year for PM-KISAN beneficiaries in Maharashtra.",
		RequiredDocuments: []string{types.DocTypeAadhaar, types.DocTypeSevenTwelve, types.DocTypeBankPassbook},
	},
}

func SyncSchemes(ctx context.Context, out io.Writer, repo SchemeStore) error {
	fmt.Fprintf(out, "Seeding %d demo schemes...\n", len(DemoSchemes))

	for _, scheme := range DemoSchemes {
		fmt.Fprintf(out, "  Upserting scheme: %s (id: %s)\n", scheme.Name, scheme.ID)
		if err := repo.UpsertScheme(ctx, &scheme); err != nil {
			return fmt.Errorf("failed to upsert scheme %s: %w", scheme.ID, err)
		}
	}

	fmt.Fprintf(out, "\nScheme sync complete: %d upserted\n", len(DemoSchemes))
	return nil
}

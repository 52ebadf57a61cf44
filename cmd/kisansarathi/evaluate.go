package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"kisansarathi/internal/eligibility"
	"kisansarathi/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var evaluateCommand = &cli.Command{
	Name:      "evaluate",
	Usage:     "Check eligibility offline from scheme and document JSON files",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "schemes",
			Aliases:  []string{"s"},
			Usage:    "Path to a JSON array of schemes",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "documents",
			Aliases:  []string{"d"},
			Usage:    "Path to a JSON array of the farmer's documents",
			Required: true,
		},
		&cli.TimestampFlag{
			Name:     "now",
			Usage:    "Evaluate expiry as of this date (YYYY-MM-DD)",
			Layout:   time.DateOnly,
			Timezone: time.UTC,
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print results instead of JSON",
		},
	},
	Action: func(c *cli.Context) error {
		schemesFile, err := os.Open(c.String("schemes"))
		if err != nil {
			return fmt.Errorf("open schemes: %w", err)
		}
		defer schemesFile.Close()

		documentsFile, err := os.Open(c.String("documents"))
		if err != nil {
			return fmt.Errorf("open documents: %w", err)
		}
		defer documentsFile.Close()

		now := time.Now()
		if ts := c.Timestamp("now"); ts != nil {
			now = *ts
		}

		results, err := evaluateFiles(schemesFile, documentsFile, now)
		if err != nil {
			return err
		}

		if c.Bool("pretty") {
			printer := pp.New()
			printer.SetOutput(c.App.Writer)
			_, err = printer.Println(results)
			return err
		}

		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

// evaluateFiles decodes both collections into typed records and evaluates
// every scheme against the documents.
func evaluateFiles(schemesR, documentsR io.Reader, now time.Time) ([]*types.SchemeEligibility, error) {
	var schemes []types.Scheme
	if err := json.NewDecoder(schemesR).Decode(&schemes); err != nil {
		return nil, fmt.Errorf("decode schemes: %w", err)
	}

	var docs []types.DocumentRecord
	if err := json.NewDecoder(documentsR).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	results := make([]*types.SchemeEligibility, 0, len(schemes))
	for _, scheme := range schemes {
		if scheme.RequiredDocuments == nil {
			scheme.RequiredDocuments = []string{}
		}
		results = append(results, &types.SchemeEligibility{
			Scheme:            scheme,
			EligibilityResult: eligibility.EvaluateDocuments(scheme.RequiredDocuments, docs, now),
			HasVideo:          scheme.HasVideo(),
		})
	}

	return results, nil
}

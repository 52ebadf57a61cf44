package eligibility

import (
	"context"
	"fmt"
	"time"

	"kisansarathi/pkg/types"

	"golang.org/x/sync/errgroup"
)

type DocumentSource interface {
	DocumentsByFarmer(ctx context.Context, farmerID string) ([]*types.Document, error)
}

// SchemeSource returns schemes with RequiredDocuments populated.
type SchemeSource interface {
	Schemes(ctx context.Context, filter types.SchemeFilter) ([]*types.Scheme, error)
	Scheme(ctx context.Context, schemeID string) (*types.Scheme, error)
}

type Service struct {
	documents DocumentSource
	schemes   SchemeSource
	now       func() time.Time
}

func NewService(documents DocumentSource, schemes SchemeSource) *Service {
	return &Service{
		documents: documents,
		schemes:   schemes,
		now:       time.Now,
	}
}

// SchemesForFarmer lists schemes matching filter, each evaluated against the
// farmer's unexpired documents.
func (s *Service) SchemesForFarmer(ctx context.Context, farmerID string, filter types.SchemeFilter) ([]*types.SchemeEligibility, error) {
	var (
		docs    []*types.Document
		schemes []*types.Scheme
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.documents.DocumentsByFarmer(gctx, farmerID)
		if err != nil {
			return fmt.Errorf("failed to load farmer documents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		schemes, err = s.schemes.Schemes(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load schemes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available := AvailableDocTypes(records(docs), s.now())

	out := make([]*types.SchemeEligibility, 0, len(schemes))
	for _, scheme := range schemes {
		out = append(out, evaluated(scheme, available))
	}

	return out, nil
}

func (s *Service) SchemeForFarmer(ctx context.Context, farmerID, schemeID string) (*types.SchemeEligibility, error) {
	scheme, err := s.schemes.Scheme(ctx, schemeID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.DocumentsByFarmer(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load farmer documents: %w", err)
	}

	return evaluated(scheme, AvailableDocTypes(records(docs), s.now())), nil
}

// evaluated works on a copy; the source scheme is left untouched.
func evaluated(scheme *types.Scheme, available []string) *types.SchemeEligibility {
	out := *scheme
	if out.RequiredDocuments == nil {
		out.RequiredDocuments = []string{}
	}

	return &types.SchemeEligibility{
		Scheme:            out,
		EligibilityResult: Evaluate(out.RequiredDocuments, available),
		HasVideo:          out.HasVideo(),
	}
}

func records(docs []*types.Document) []types.DocumentRecord {
	out := make([]types.DocumentRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Record())
	}
	return out
}

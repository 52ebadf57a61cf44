package eligibility

import (
	"context"
	"errors"
	"testing"
	"time"

	"kisansarathi/pkg/types"

	"github.com/stretchr/testify/require"
)

type fakeDocuments struct {
	docs []*types.Document
	err  error
}

func (f *fakeDocuments) DocumentsByFarmer(_ context.Context, _ string) ([]*types.Document, error) {
	return f.docs, f.err
}

type fakeSchemes struct {
	schemes []*types.Scheme
	err     error
}

func (f *fakeSchemes) Schemes(_ context.Context, _ types.SchemeFilter) ([]*types.Scheme, error) {
	return f.schemes, f.err
}

func (f *fakeSchemes) Scheme(_ context.Context, id string) (*types.Scheme, error) {
	for _, s := range f.schemes {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, types.ErrSchemeNotFound
}

func newTestService(docs *fakeDocuments, schemes *fakeSchemes, now time.Time) *Service {
	svc := NewService(docs, schemes)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSchemesForFarmer(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	expired := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	video := "pm_kisan.mp4"

	docs := &fakeDocuments{docs: []*types.Document{
		{ID: "d1", DocType: "aadhaar"},
		{ID: "d2", DocType: "bank_passbook", ExpiryDate: &expired},
	}}
	schemes := &fakeSchemes{schemes: []*types.Scheme{
		{ID: "s1", Name: "PM-KISAN", RequiredDocuments: []string{"aadhaar"}, VideoURL: &video},
		{ID: "s2", Name: "KCC", RequiredDocuments: []string{"aadhaar", "bank_passbook"}},
		{ID: "s3", Name: "Open"},
	}}

	out, err := newTestService(docs, schemes, now).SchemesForFarmer(context.Background(), "farmer-1", types.SchemeFilter{})
	require.NoError(t, err)
	require.Len(t, out, 3)

	require.True(t, out[0].IsEligible)
	require.True(t, out[0].HasVideo)

	require.False(t, out[1].IsEligible)
	require.Equal(t, []string{"bank_passbook"}, out[1].MissingDocuments)
	require.Equal(t, []string{"aadhaar"}, out[1].AvailableDocuments)

	require.True(t, out[2].IsEligible)
	require.NotNil(t, out[2].RequiredDocuments)
}

func TestSchemesForFarmerNoDocuments(t *testing.T) {
	schemes := &fakeSchemes{schemes: []*types.Scheme{
		{ID: "s1", RequiredDocuments: []string{"aadhaar"}},
	}}

	out, err := newTestService(&fakeDocuments{}, schemes, time.Now()).SchemesForFarmer(context.Background(), "f", types.SchemeFilter{})
	require.NoError(t, err)
	require.False(t, out[0].IsEligible)
}

func TestSchemesForFarmerSourceError(t *testing.T) {
	boom := errors.New("boom")

	_, err := newTestService(&fakeDocuments{err: boom}, &fakeSchemes{}, time.Now()).SchemesForFarmer(context.Background(), "f", types.SchemeFilter{})
	require.ErrorIs(t, err, boom)

	_, err = newTestService(&fakeDocuments{}, &fakeSchemes{err: boom}, time.Now()).SchemesForFarmer(context.Background(), "f", types.SchemeFilter{})
	require.ErrorIs(t, err, boom)
}

func TestSchemeForFarmer(t *testing.T) {
	schemes := &fakeSchemes{schemes: []*types.Scheme{
		{ID: "s1", RequiredDocuments: []string{"soil_report"}},
	}}
	docs := &fakeDocuments{docs: []*types.Document{{ID: "d1", DocType: "soil_report"}}}
	svc := newTestService(docs, schemes, time.Now())

	got, err := svc.SchemeForFarmer(context.Background(), "f", "s1")
	require.NoError(t, err)
	require.True(t, got.IsEligible)

	_, err = svc.SchemeForFarmer(context.Background(), "f", "missing")
	require.ErrorIs(t, err, types.ErrSchemeNotFound)
}

func TestSchemeForFarmerLeavesSourceUntouched(t *testing.T) {
	scheme := &types.Scheme{ID: "s1"}
	svc := newTestService(&fakeDocuments{}, &fakeSchemes{schemes: []*types.Scheme{scheme}}, time.Now())

	got, err := svc.SchemeForFarmer(context.Background(), "f", "s1")
	require.NoError(t, err)
	require.Equal(t, []string{}, got.RequiredDocuments)
	require.True(t, got.IsEligible)
	require.Nil(t, scheme.RequiredDocuments)
}

package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseExpiryDate(t *testing.T) {
	got, err := ParseExpiryDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseExpiryDate(strPtr("  "))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseExpiryDate(strPtr("2025-03-01"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseExpiryDate(strPtr("2025-03-01T10:30:00+05:30"))
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 1, 5, 0, 0, 0, time.UTC)))

	_, err = ParseExpiryDate(strPtr("01/03/2025"))
	assert.Error(t, err)
}

func TestDocumentRecordUnmarshal(t *testing.T) {
	var records []DocumentRecord
	err := json.Unmarshal([]byte(`[
		{"id": "a", "doc_type": "aadhaar", "expiry_date": "2030-12-31"},
		{"id": "b", "doc_type": "land_report"}
	]`), &records)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2030, records[0].ExpiryDate.Year())
	assert.Nil(t, records[1].ExpiryDate)

	cases := map[string]string{
		"missing doc_type":    `{"id": "x"}`,
		"non-string doc_type": `{"id": "x", "doc_type": ["aadhaar"]}`,
		"bad expiry":          `{"id": "x", "doc_type": "aadhaar", "expiry_date": "soon"}`,
		"non-string expiry":   `{"id": "x", "doc_type": "aadhaar", "expiry_date": 20301231}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var r DocumentRecord
			assert.Error(t, json.Unmarshal([]byte(raw), &r))
		})
	}
}

func TestDocumentLabels(t *testing.T) {
	assert.Equal(t, "7/12 Document", DocumentLabel(DocTypeSevenTwelve))
	assert.Equal(t, "ration card", DocumentLabel("ration_card"))

	assert.Equal(t, "crop_insurance_policy", NormalizeCustomDocType("  Crop Insurance\tPolicy "))
	assert.Equal(t, "", NormalizeCustomDocType("   "))
	assert.Equal(t, "my_doc_1", NormalizeCustomDocType("my doc#1"))
	assert.Equal(t, "victim_aadhaar", NormalizeCustomDocType("../victim/aadhaar"))
	assert.Equal(t, "rent_q_x", NormalizeCustomDocType("rent?q=x"))
	assert.Equal(t, "", NormalizeCustomDocType("../#?/"))

	for i, dt := range StandardDocumentTypes {
		assert.Equal(t, i+1, dt.Order)
	}
}

func TestIdentityInGroup(t *testing.T) {
	id := &Identity{UserID: "u", Groups: []string{"admins"}}
	assert.True(t, id.InGroup("admins"))
	assert.False(t, id.InGroup("Admins"))
}

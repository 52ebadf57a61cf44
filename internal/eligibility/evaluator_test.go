package eligibility

import (
	"encoding/json"
	"testing"
	"time"

	"kisansarathi/pkg/types"

	"github.com/stretchr/testify/suite"
)

type EvaluateSuite struct {
	suite.Suite
	now time.Time
}

func TestEvaluateSuite(t *testing.T) {
	suite.Run(t, new(EvaluateSuite))
}

func (s *EvaluateSuite) SetupTest() {
	s.now = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
}

func (s *EvaluateSuite) TestScenarios() {
	s.Run("one of two documents held", func() {
		res := Evaluate([]string{"aadhaar", "land_record"}, []string{"aadhaar"})
		s.Equal([]string{"land_record"}, res.MissingDocuments)
		s.Equal([]string{"aadhaar"}, res.AvailableDocuments)
		s.False(res.IsEligible)
	})

	s.Run("all documents held", func() {
		res := Evaluate([]string{"aadhaar"}, []string{"aadhaar"})
		s.Empty(res.MissingDocuments)
		s.True(res.IsEligible)
	})

	s.Run("empty required is eligible", func() {
		for _, available := range [][]string{nil, {}, {"aadhaar", "bank_passbook"}} {
			res := Evaluate(nil, available)
			s.True(res.IsEligible)
			s.Empty(res.MissingDocuments)
			s.Empty(res.AvailableDocuments)
		}
	})

	s.Run("absent documents leave every requirement missing", func() {
		res := Evaluate([]string{"aadhaar", "seven_twelve"}, nil)
		s.Equal([]string{"aadhaar", "seven_twelve"}, res.MissingDocuments)
		s.False(res.IsEligible)
	})
}

func (s *EvaluateSuite) TestMatching() {
	s.Run("match is case sensitive", func() {
		res := Evaluate([]string{"aadhaar"}, []string{"Aadhaar"})
		s.Equal([]string{"aadhaar"}, res.MissingDocuments)
		s.False(res.IsEligible)
	})

	s.Run("no aliasing between similar types", func() {
		res := Evaluate([]string{"land_record"}, []string{"land_report"})
		s.Equal([]string{"land_record"}, res.MissingDocuments)
	})

	s.Run("duplicates collapse in required order", func() {
		res := Evaluate(
			[]string{"bank_passbook", "aadhaar", "bank_passbook", "soil_report"},
			[]string{"aadhaar", "aadhaar"},
		)
		s.Equal([]string{"aadhaar"}, res.AvailableDocuments)
		s.Equal([]string{"bank_passbook", "soil_report"}, res.MissingDocuments)
	})

	s.Run("extra available documents are ignored", func() {
		res := Evaluate([]string{"aadhaar"}, []string{"aadhaar", "pan_card"})
		s.Equal([]string{"aadhaar"}, res.AvailableDocuments)
		s.True(res.IsEligible)
	})
}

func (s *EvaluateSuite) TestSetDifferenceLaw() {
	cases := []struct {
		required  []string
		available []string
	}{
		{[]string{"a", "b", "c"}, []string{"b"}},
		{[]string{"a"}, []string{"a", "b"}},
		{[]string{}, []string{"x"}},
		{[]string{"x", "y"}, []string{}},
		{[]string{"x", "y", "z"}, []string{"z", "y", "x"}},
	}

	for _, tc := range cases {
		res := Evaluate(tc.required, tc.available)

		have := map[string]bool{}
		for _, d := range tc.available {
			have[d] = true
		}
		for _, d := range tc.required {
			if have[d] {
				s.Contains(res.AvailableDocuments, d)
				s.NotContains(res.MissingDocuments, d)
			} else {
				s.Contains(res.MissingDocuments, d)
			}
		}
		for _, d := range res.MissingDocuments {
			s.False(have[d])
		}
		s.Equal(len(res.MissingDocuments) == 0, res.IsEligible)
	}
}

func (s *EvaluateSuite) TestIdempotent() {
	required := []string{"aadhaar", "land_report", "seven_twelve"}
	available := []string{"seven_twelve"}

	first := Evaluate(required, available)
	second := Evaluate(required, available)
	s.Equal(first, second)
	s.Equal([]string{"aadhaar", "land_report", "seven_twelve"}, required)
	s.Equal([]string{"seven_twelve"}, available)
}

func (s *EvaluateSuite) TestExpiry() {
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	future := s.now.AddDate(1, 0, 0)

	s.Run("expired aadhaar does not satisfy requirement", func() {
		docs := []types.DocumentRecord{{ID: "d1", DocType: "aadhaar", ExpiryDate: &past}}
		res := EvaluateDocuments([]string{"aadhaar"}, docs, s.now)
		s.Equal([]string{"aadhaar"}, res.MissingDocuments)
		s.Empty(res.AvailableDocuments)
		s.False(res.IsEligible)
	})

	s.Run("unexpired and undated documents count", func() {
		docs := []types.DocumentRecord{
			{ID: "d1", DocType: "aadhaar", ExpiryDate: &future},
			{ID: "d2", DocType: "land_report"},
		}
		res := EvaluateDocuments([]string{"aadhaar", "land_report"}, docs, s.now)
		s.True(res.IsEligible)
	})

	s.Run("expiry equal to now is still valid", func() {
		at := s.now
		s.False(IsExpired(&at, s.now))
		s.True(IsExpired(&at, s.now.Add(time.Nanosecond)))
	})

	s.Run("nil expiry never expires", func() {
		s.False(IsExpired(nil, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	s.Run("expired copy is shadowed by a valid one", func() {
		docs := []types.DocumentRecord{
			{ID: "old", DocType: "aadhaar", ExpiryDate: &past},
			{ID: "new", DocType: "aadhaar", ExpiryDate: &future},
		}
		s.Equal([]string{"aadhaar"}, AvailableDocTypes(docs, s.now))
	})
}

func (s *EvaluateSuite) TestDecodedRecords() {
	payload := `[
		{"id": "1", "doc_type": "aadhaar", "expiry_date": "2020-01-01"},
		{"id": "2", "doc_type": "bank_passbook", "expiry_date": null},
		{"id": "3", "doc_type": "land_report"}
	]`

	var docs []types.DocumentRecord
	s.Require().NoError(json.Unmarshal([]byte(payload), &docs))

	res := EvaluateDocuments([]string{"aadhaar", "bank_passbook", "land_report"}, docs, s.now)
	s.Equal([]string{"bank_passbook", "land_report"}, res.AvailableDocuments)
	s.Equal([]string{"aadhaar"}, res.MissingDocuments)
}

package types

import "time"

// Scheme is a government programme a farmer can apply to.
type Scheme struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"scheme_name" json:"scheme_name"`
	State       string    `db:"state" json:"state"`
	CropType    string    `db:"crop_type" json:"crop_type"`
	SummaryText string    `db:"summary_text" json:"summary_text"`
	VideoURL    *string   `db:"video_url" json:"-"`
	CreatedBy   *string   `db:"created_by" json:"-"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
	CreatedAt   time.Time `db:"created_at" json:"-"`

	RequiredDocuments []string `db:"-" json:"required_documents"`
}

func (s *Scheme) HasVideo() bool {
	return s.VideoURL != nil && *s.VideoURL != ""
}

type SchemeRequiredDocument struct {
	SchemeID string `db:"scheme_id"`
	DocType  string `db:"doc_type"`
}

type SchemeFilter struct {
	State    string `form:"state"`
	CropType string `form:"crop_type"`
}

// EligibilityResult is derived per (farmer, scheme) pair and never stored.
type EligibilityResult struct {
	AvailableDocuments []string `json:"available_documents"`
	MissingDocuments   []string `json:"missing_documents"`
	IsEligible         bool     `json:"is_eligible"`
}

type SchemeEligibility struct {
	Scheme
	EligibilityResult
	HasVideo bool `json:"has_video"`
}

package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Document is a file a farmer uploaded to the vault
type Document struct {
	ID         string     `db:"id" json:"id"`
	FarmerID   string     `db:"farmer_id" json:"-"`
	DocType    string     `db:"doc_type" json:"doc_type"`
	FileURL    string     `db:"file_url" json:"file_url"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiry_date"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Record projects the document onto the fields eligibility is computed from.
func (d *Document) Record() DocumentRecord {
	return DocumentRecord{
		ID:         d.ID,
		DocType:    d.DocType,
		ExpiryDate: d.ExpiryDate,
	}
}

// DocumentView is a document as returned to the farmer.
type DocumentView struct {
	*Document
	Label     string `json:"label"`
	IsCustom  bool   `json:"is_custom"`
	IsExpired bool   `json:"is_expired"`
}

const DocumentStatusValid = "valid"

// DocumentRecord is the typed boundary shape of a document as delivered by
// the backend: `{ "id", "doc_type", "expiry_date": string|null }`.
type DocumentRecord struct {
	ID         string     `json:"id"`
	DocType    string     `json:"doc_type"`
	ExpiryDate *time.Time `json:"expiry_date"`
}

func (r *DocumentRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         string  `json:"id"`
		DocType    string  `json:"doc_type"`
		ExpiryDate *string `json:"expiry_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode document record: %w", err)
	}

	if strings.TrimSpace(raw.DocType) == "" {
		return fmt.Errorf("document record %q: doc_type is required", raw.ID)
	}

	expiry, err := ParseExpiryDate(raw.ExpiryDate)
	if err != nil {
		return fmt.Errorf("document record %q: %w", raw.ID, err)
	}

	r.ID = raw.ID
	r.DocType = raw.DocType
	r.ExpiryDate = expiry
	return nil
}

// ParseExpiryDate accepts a calendar date (2006-01-02) or an RFC 3339
// timestamp. Nil and blank input mean the document never expires.
func ParseExpiryDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}

	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry_date %q: want YYYY-MM-DD or RFC 3339", v)
	}

	return &t, nil
}

// Standard document types. Anything else is a farmer-defined custom type.
const (
	DocTypeAadhaar      = "aadhaar"
	DocTypeLandReport   = "land_report"
	DocTypeSevenTwelve  = "seven_twelve"
	DocTypeBankPassbook = "bank_passbook"
	DocTypeSoilReport   = "soil_report"
)

type DocumentType struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// StandardDocumentTypes is ordered the way the vault displays them.
var StandardDocumentTypes = []DocumentType{
	{Code: DocTypeAadhaar, Label: "Aadhaar Card", Order: 1},
	{Code: DocTypeLandReport, Label: "Land Report", Order: 2},
	{Code: DocTypeSevenTwelve, Label: "7/12 Document", Order: 3},
	{Code: DocTypeBankPassbook, Label: "Bank Passbook", Order: 4},
	{Code: DocTypeSoilReport, Label: "Soil Health Report", Order: 5},
}

func StandardDocumentType(code string) (DocumentType, bool) {
	for _, t := range StandardDocumentTypes {
		if t.Code == code {
			return t, true
		}
	}
	return DocumentType{}, false
}

// DocumentLabel returns the display label for a doc type. Custom types are
// shown with underscores replaced by spaces.
func DocumentLabel(code string) string {
	if t, ok := StandardDocumentType(code); ok {
		return t.Label
	}
	return strings.ReplaceAll(code, "_", " ")
}

var docTypeSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeCustomDocType turns a free-form document name into a doc type
// made only of [a-z0-9_]: lower-cased, every run of other characters
// collapsed to a single underscore, no leading or trailing underscore.
// The result is safe to use as an object key segment.
func NormalizeCustomDocType(name string) string {
	return strings.Trim(docTypeSeparators.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

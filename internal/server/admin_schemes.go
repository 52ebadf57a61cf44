package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"kisansarathi/internal/storage"
	"kisansarathi/internal/utils"
	"kisansarathi/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxVideoUploadBytes = 200 << 20

type createSchemeForm struct {
	SchemeName        string `form:"scheme_name"`
	State             string `form:"state"`
	CropType          string `form:"crop_type"`
	SummaryText       string `form:"summary_text"`
	RequiredDocuments string `form:"required_documents"`
}

func (f *createSchemeForm) validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.SchemeName) == "" {
		errs["scheme_name"] = "Scheme name is required."
	}
	if strings.TrimSpace(f.State) == "" {
		errs["state"] = "State is required."
	}
	if strings.TrimSpace(f.CropType) == "" {
		errs["crop_type"] = "Crop type is required."
	}
	return errs
}

// parseRequiredDocuments splits a comma separated list, dropping blanks and
// repeats while keeping first-seen order.
func parseRequiredDocuments(raw string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		docType := strings.TrimSpace(part)
		if docType == "" {
			continue
		}
		if _, ok := seen[docType]; ok {
			continue
		}
		seen[docType] = struct{}{}
		out = append(out, docType)
	}
	return out
}

func (s *Service) handleCreateScheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxVideoUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var input = new(createSchemeForm)
	if err := decoder.Decode(input, url.Values(r.MultipartForm.Value)); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.writeError(w, http.StatusBadRequest, "Invalid form fields")
		return
	}

	if errs := input.validate(); len(errs) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Detail: "Please fix the highlighted fields.",
			Errors: errs,
		})
		return
	}

	scheme := &types.Scheme{
		Name:              strings.TrimSpace(input.SchemeName),
		State:             strings.TrimSpace(input.State),
		CropType:          strings.TrimSpace(input.CropType),
		SummaryText:       strings.TrimSpace(input.SummaryText),
		CreatedBy:         utils.StringPtr(identity.UserID),
		RequiredDocuments: parseRequiredDocuments(input.RequiredDocuments),
	}

	entry := s.logger.WithFields(logrus.Fields{
		"user_id":     identity.UserID,
		"scheme_name": scheme.Name,
	})

	file, header, err := r.FormFile("video")
	switch {
	case err == nil:
		defer file.Close()

		key := storage.VideoKey(scheme.Name)
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "video/mp4"
		}

		if err := s.deps.VideoBucket.Put(ctx, key, file, header.Size, contentType); err != nil {
			entry.WithError(err).Error("failed to upload scheme video")
			s.writeError(w, http.StatusBadGateway, "Failed to store video")
			return
		}
		scheme.VideoURL = utils.StringPtr(key)
	case !errors.Is(err, http.ErrMissingFile):
		s.writeError(w, http.StatusBadRequest, "Invalid video upload")
		return
	}

	if err := s.deps.Schemes.CreateScheme(ctx, scheme); err != nil {
		entry.WithError(err).Error("failed to create scheme")
		s.internalServerError(w)
		return
	}

	entry.WithField("scheme_id", scheme.ID).Info("scheme created")

	s.writeJSON(w, http.StatusCreated, &types.SchemeEligibility{
		Scheme:   *scheme,
		HasVideo: scheme.HasVideo(),
	})
}

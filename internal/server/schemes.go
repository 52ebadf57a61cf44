package server

import (
	"errors"
	"net/http"

	"kisansarathi/internal/storage"
	"kisansarathi/pkg/types"
)

func (s *Service) handleListSchemes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	var filter types.SchemeFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid filters")
		return
	}

	schemes, err := s.deps.Eligibility.SchemesForFarmer(ctx, identity.UserID, filter)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to evaluate schemes")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, schemes)
}

func (s *Service) handleGetScheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	schemeID := r.PathValue("id")

	scheme, err := s.deps.Eligibility.SchemeForFarmer(ctx, identity.UserID, schemeID)
	if err != nil {
		if errors.Is(err, types.ErrSchemeNotFound) {
			s.writeError(w, http.StatusNotFound, "Scheme not found")
			return
		}
		s.logger.WithError(err).WithField("scheme_id", schemeID).Error("failed to evaluate scheme")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, scheme)
}

func (s *Service) handleSchemeVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schemeID := r.PathValue("id")

	scheme, err := s.deps.Schemes.Scheme(ctx, schemeID)
	if err != nil {
		if errors.Is(err, types.ErrSchemeNotFound) {
			s.writeError(w, http.StatusNotFound, "Scheme not found")
			return
		}
		s.logger.WithError(err).WithField("scheme_id", schemeID).Error("failed to fetch scheme")
		s.internalServerError(w)
		return
	}

	if !scheme.HasVideo() {
		s.writeError(w, http.StatusNotFound, "No video for this scheme")
		return
	}

	signed, err := s.deps.VideoBucket.SignedURL(ctx, *scheme.VideoURL, storage.VideoURLTTL)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		s.logger.WithError(err).WithField("scheme_id", schemeID).Error("failed to sign video url")
		s.writeError(w, http.StatusBadGateway, "Failed to generate video link")
		return
	}

	s.writeJSON(w, http.StatusOK, signedURLResponse{
		URL:       signed,
		ExpiresIn: int(storage.VideoURLTTL.Seconds()),
	})
}

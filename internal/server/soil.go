package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"kisansarathi/internal/advisory"
	"kisansarathi/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxSoilImageBytes = 8 << 20

func (s *Service) handleAnalyzeSoil(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	if s.deps.Analyzer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Soil analysis is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSoilImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxSoilImageBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	farmName := strings.TrimSpace(r.FormValue("farm_name"))
	if farmName == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "farm_name is required")
		return
	}

	var (
		image    []byte
		mimeType string
	)

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		image, err = io.ReadAll(file)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Failed to read image")
			return
		}
		mimeType = header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = http.DetectContentType(image)
		}
	case !errors.Is(err, http.ErrMissingFile):
		s.writeError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}

	entry := s.logger.WithFields(logrus.Fields{
		"user_id":   identity.UserID,
		"farm_name": farmName,
	})

	analyzeCtx := ctx
	if s.config.SoilAnalysisTimeout > 0 {
		var cancel context.CancelFunc
		analyzeCtx, cancel = context.WithTimeout(ctx, time.Duration(s.config.SoilAnalysisTimeout)*time.Second)
		defer cancel()
	}

	analysis, err := s.deps.Analyzer.Analyze(analyzeCtx, image, mimeType)
	if err != nil {
		entry.WithError(err).Error("soil analysis failed")
		if errors.Is(err, advisory.ErrIncompleteAnalysis) {
			s.writeError(w, http.StatusBadGateway, "Soil analysis returned an incomplete result")
			return
		}
		s.writeError(w, http.StatusBadGateway, "Soil analysis failed")
		return
	}

	report := &types.SoilReport{
		FarmerID:           identity.UserID,
		FarmName:           farmName,
		SoilType:           analysis.SoilType,
		EstimatedNutrients: analysis.Nutrients,
		HealthScore:        analysis.HealthScore,
	}

	if err := s.deps.SoilReports.CreateSoilReport(ctx, report); err != nil {
		entry.WithError(err).Error("failed to save soil report")
		s.internalServerError(w)
		return
	}

	entry.WithField("soil_report_id", report.ID).Info("soil analysed")

	s.writeJSON(w, http.StatusCreated, report)
}

func (s *Service) handleSoilReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	reports, err := s.deps.SoilReports.SoilReportsByFarmer(ctx, identity.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to fetch soil reports")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, reports)
}

type recommendationQuery struct {
	Lat *float64 `form:"lat"`
	Lon *float64 `form:"lon"`
}

func (s *Service) handleCropRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	var query recommendationQuery
	if err := decoder.Decode(&query, r.URL.Query()); err != nil || query.Lat == nil || query.Lon == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "lat and lon are required numbers")
		return
	}

	cropName := strings.TrimSpace(r.PathValue("crop"))
	loc := types.Location{Lat: *query.Lat, Lon: *query.Lon}

	rec, err := s.deps.Advisor.RecommendCrop(ctx, identity.UserID, cropName, loc)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrSoilReportNotFound):
			s.writeError(w, http.StatusNotFound, "No soil analysis found")
		case errors.Is(err, types.ErrCropNotFound):
			s.writeError(w, http.StatusNotFound, "Crop not found")
		default:
			s.logger.WithError(err).WithField("crop", cropName).Error("failed to build crop recommendation")
			s.internalServerError(w)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

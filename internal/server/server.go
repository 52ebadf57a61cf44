package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"kisansarathi/internal/auth"
	"kisansarathi/internal/storage"
	"kisansarathi/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type DocumentStore interface {
	DocumentsByFarmer(ctx context.Context, farmerID string) ([]*types.Document, error)
	Document(ctx context.Context, farmerID, documentID string) (*types.Document, error)
	ReplaceDocument(ctx context.Context, doc *types.Document) ([]*types.Document, error)
	DeleteDocument(ctx context.Context, farmerID, documentID string) error
}

type SchemeStore interface {
	Scheme(ctx context.Context, schemeID string) (*types.Scheme, error)
	CreateScheme(ctx context.Context, scheme *types.Scheme) error
}

type SoilReportStore interface {
	CreateSoilReport(ctx context.Context, report *types.SoilReport) error
	SoilReportsByFarmer(ctx context.Context, farmerID string) ([]*types.SoilReport, error)
}

type UserStore interface {
	UpsertIdentity(ctx context.Context, userID string, userType types.UserType, email, givenName, familyName string) error
}

type EligibilityService interface {
	SchemesForFarmer(ctx context.Context, farmerID string, filter types.SchemeFilter) ([]*types.SchemeEligibility, error)
	SchemeForFarmer(ctx context.Context, farmerID, schemeID string) (*types.SchemeEligibility, error)
}

type CropAdvisor interface {
	RecommendCrop(ctx context.Context, farmerID, cropName string, loc types.Location) (*types.CropRecommendation, error)
}

type SoilAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*types.SoilAnalysis, error)
}

type Authenticator interface {
	Register(ctx context.Context, in *auth.RegisterInput) error
	Confirm(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

// TokenVerifier checks bearer access tokens with Verify and the ID token
// returned at login with VerifyIDToken.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*types.Identity, error)
	VerifyIDToken(ctx context.Context, token string) (*types.Identity, error)
}

// Dependencies are the collaborators handlers call into. SoilAnalyzer may be
// nil when no model is configured.
type Dependencies struct {
	Documents   DocumentStore
	Schemes     SchemeStore
	SoilReports SoilReportStore
	Users       UserStore
	Eligibility EligibilityService
	Advisor     CropAdvisor
	Analyzer    SoilAnalyzer

	Authenticator Authenticator
	Verifier      TokenVerifier

	DocumentBucket storage.Bucket
	VideoBucket    storage.Bucket
}

type Service struct {
	logger *logrus.Logger
	config *types.Config
	deps   Dependencies

	cookie *securecookie.SecureCookie
	now    func() time.Time

	server *http.Server
}

func New(config *types.Config, logger *logrus.Logger, deps Dependencies) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	s := &Service{
		logger: logger,
		config: config,
		deps:   deps,
		cookie: securecookie.New(hashKey, blockKey),
		now:    time.Now,
	}

	s.buildRouter(mux)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.CORS(s.StripTrailingSlash(mux)),
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/api/auth/register/confirm", s.handleRegisterConfirm, http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handleLogout, http.MethodPost)

	r.HandleFunc("/api/documents/types", s.handleDocumentTypes, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/auth/me", s.handleMe, http.MethodGet)

		r.HandleFunc("/api/documents/upload", s.handleUploadDocument, http.MethodPost)
		r.HandleFunc("/api/documents/my", s.handleMyDocuments, http.MethodGet)
		r.HandleFunc("/api/documents/:id/preview", s.handlePreviewDocument, http.MethodGet)
		r.HandleFunc("/api/documents/:id/download", s.handleDownloadDocument, http.MethodGet)
		r.HandleFunc("/api/documents/:id", s.handleDeleteDocument, http.MethodDelete)

		r.HandleFunc("/api/schemes", s.handleListSchemes, http.MethodGet)
		r.HandleFunc("/api/schemes/:id", s.handleGetScheme, http.MethodGet)
		r.HandleFunc("/api/schemes/:id/video", s.handleSchemeVideo, http.MethodGet)

		r.HandleFunc("/api/soil/analyze", s.handleAnalyzeSoil, http.MethodPost)
		r.HandleFunc("/api/soil/reports", s.handleSoilReports, http.MethodGet)

		r.HandleFunc("/api/recommendation/crop/:crop", s.handleCropRecommendation, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireAdmin)

			r.HandleFunc("/api/admin/schemes", s.handleCreateScheme, http.MethodPost)
		})
	})
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Kisan-Sarathi API is running"})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) identityFromContext(ctx context.Context) (*types.Identity, error) {
	identity, ok := ctx.Value(contextKeyIdentity).(*types.Identity)
	if !ok || identity == nil {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

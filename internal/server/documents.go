package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"kisansarathi/internal/eligibility"
	"kisansarathi/internal/storage"
	"kisansarathi/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxDocumentUploadBytes = 10 << 20

// docTypeOther asks for the free-form custom_name field to be used instead.
const docTypeOther = "other"

type uploadDocumentForm struct {
	DocType    string `form:"doc_type"`
	CustomName string `form:"custom_name"`
	ExpiryDate string `form:"expiry_date"`
}

func resolveDocType(docType, customName string) (string, error) {
	docType = strings.TrimSpace(docType)
	if docType == docTypeOther {
		docType = customName
	}

	if _, ok := types.StandardDocumentType(docType); ok {
		return docType, nil
	}

	normalized := types.NormalizeCustomDocType(docType)
	if normalized == "" {
		return "", fmt.Errorf("doc_type is required")
	}

	return normalized, nil
}

func documentView(doc *types.Document, now time.Time) *types.DocumentView {
	_, standard := types.StandardDocumentType(doc.DocType)
	return &types.DocumentView{
		Document:  doc,
		Label:     types.DocumentLabel(doc.DocType),
		IsCustom:  !standard,
		IsExpired: eligibility.IsExpired(doc.ExpiryDate, now),
	}
}

func (s *Service) handleDocumentTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, types.StandardDocumentTypes)
}

func (s *Service) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(maxDocumentUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var upload = new(uploadDocumentForm)
	if err := decoder.Decode(upload, url.Values(r.MultipartForm.Value)); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.writeError(w, http.StatusBadRequest, "Invalid form fields")
		return
	}

	docType, err := resolveDocType(upload.DocType, upload.CustomName)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	expiry, err := types.ParseExpiryDate(&upload.ExpiryDate)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.DocumentKey(identity.UserID, docType, header.Filename)
	entry := s.logger.WithFields(logrus.Fields{
		"user_id":  identity.UserID,
		"doc_type": docType,
		"key":      key,
	})

	if err := s.deps.DocumentBucket.Put(ctx, key, file, header.Size, contentType); err != nil {
		entry.WithError(err).Error("failed to upload document")
		s.writeError(w, http.StatusBadGateway, "Failed to store document")
		return
	}

	doc := &types.Document{
		FarmerID:   identity.UserID,
		DocType:    docType,
		FileURL:    key,
		ExpiryDate: expiry,
		Status:     types.DocumentStatusValid,
	}

	replaced, err := s.deps.Documents.ReplaceDocument(ctx, doc)
	if err != nil {
		entry.WithError(err).Error("failed to save document")
		s.internalServerError(w)
		return
	}

	for _, old := range replaced {
		if old.FileURL == key {
			continue
		}
		if err := s.deps.DocumentBucket.Delete(ctx, old.FileURL); err != nil {
			entry.WithError(err).WithField("document_id", old.ID).Warn("failed to remove replaced document object")
		}
	}

	entry.WithField("document_id", doc.ID).Info("document uploaded")

	s.writeJSON(w, http.StatusCreated, documentView(doc, s.now()))
}

func (s *Service) handleMyDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	docs, err := s.deps.Documents.DocumentsByFarmer(ctx, identity.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to fetch documents")
		s.internalServerError(w)
		return
	}

	now := s.now()
	views := make([]*types.DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, documentView(doc, now))
	}

	s.writeJSON(w, http.StatusOK, views)
}

func (s *Service) handlePreviewDocument(w http.ResponseWriter, r *http.Request) {
	s.serveDocumentURL(w, r, false)
}

func (s *Service) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	s.serveDocumentURL(w, r, true)
}

func (s *Service) serveDocumentURL(w http.ResponseWriter, r *http.Request, download bool) {
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}

	signed, err := s.deps.DocumentBucket.SignedURL(r.Context(), doc.FileURL, storage.DocumentURLTTL)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.writeError(w, http.StatusNotFound, "File not found")
			return
		}
		s.logger.WithError(err).WithField("document_id", doc.ID).Error("failed to sign document url")
		s.writeError(w, http.StatusBadGateway, "Failed to generate document link")
		return
	}

	resp := signedURLResponse{
		URL:       signed,
		ExpiresIn: int(storage.DocumentURLTTL.Seconds()),
	}
	if download {
		resp.Filename = path.Base(doc.FileURL)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	entry := s.logger.WithField("document_id", doc.ID)

	if err := s.deps.DocumentBucket.Delete(ctx, doc.FileURL); err != nil {
		entry.WithError(err).Error("failed to delete document object")
		s.writeError(w, http.StatusBadGateway, "Failed to delete document")
		return
	}

	if err := s.deps.Documents.DeleteDocument(ctx, doc.FarmerID, doc.ID); err != nil {
		entry.WithError(err).Error("failed to delete document")
		s.internalServerError(w)
		return
	}

	entry.Info("document deleted")

	w.WriteHeader(http.StatusNoContent)
}

// ownedDocument loads the :id document for the calling farmer, writing the
// error response itself when it returns false.
func (s *Service) ownedDocument(w http.ResponseWriter, r *http.Request) (*types.Document, bool) {
	ctx := r.Context()

	identity, err := s.identityFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return nil, false
	}

	documentID := r.PathValue("id")

	doc, err := s.deps.Documents.Document(ctx, identity.UserID, documentID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.writeError(w, http.StatusNotFound, "Document not found")
			return nil, false
		}
		s.logger.WithError(err).WithField("document_id", documentID).Error("failed to fetch document")
		s.internalServerError(w)
		return nil, false
	}

	return doc, true
}

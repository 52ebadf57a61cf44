package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "farmer-1/aadhaar.pdf", DocumentKey("farmer-1", "aadhaar", "Scan.PDF"))
	assert.Equal(t, "farmer-1/land_report.jpeg", DocumentKey("farmer-1", "land_report", "my.land.jpeg"))
	assert.Equal(t, "farmer-1/bank_passbook.bin", DocumentKey("farmer-1", "bank_passbook", "noext"))
}

func TestDocumentKeyStaysUnderFarmerPrefix(t *testing.T) {
	assert.Equal(t, "farmer-1/victim_aadhaar.pdf", DocumentKey("farmer-1", "../victim/aadhaar", "a.pdf"))
	assert.Equal(t, "farmer-1/rent.pdf_q_x", DocumentKey("farmer-1", "rent", "x.PDF?q=x"))
	assert.Equal(t, "farmer-1/rent.bin", DocumentKey("farmer-1", "rent", "x.#"))
}

func TestVideoKey(t *testing.T) {
	assert.Equal(t, "pm_kisan_samman_nidhi.mp4", VideoKey("PM Kisan  Samman Nidhi"))
	assert.Equal(t, "pm_kisan_2_0.mp4", VideoKey("PM-KISAN / 2.0"))
	assert.Equal(t, "video.mp4", VideoKey("../"))
}

type SupabaseBucketSuite struct {
	suite.Suite
	srv      *httptest.Server
	bucket   *SupabaseBucket
	requests []*http.Request
	bodies   []string
	status   int
	response string
}

func TestSupabaseBucketSuite(t *testing.T) {
	suite.Run(t, new(SupabaseBucketSuite))
}

func (s *SupabaseBucketSuite) SetupTest() {
	s.requests = nil
	s.bodies = nil
	s.status = http.StatusOK
	s.response = `{}`

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.requests = append(s.requests, r)
		s.bodies = append(s.bodies, string(body))
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.response))
	}))
	s.bucket = NewSupabaseBucket(s.srv.URL+"/", "service-key", "documents", s.srv.Client())
}

func (s *SupabaseBucketSuite) TearDownTest() {
	s.srv.Close()
}

func (s *SupabaseBucketSuite) TestPut() {
	err := s.bucket.Put(context.Background(), "f1/aadhaar.pdf", strings.NewReader("pdf"), 3, "application/pdf")
	s.Require().NoError(err)

	s.Require().Len(s.requests, 1)
	req := s.requests[0]
	s.Equal(http.MethodPost, req.Method)
	s.Equal("/storage/v1/object/documents/f1/aadhaar.pdf", req.URL.Path)
	s.Equal("Bearer service-key", req.Header.Get("Authorization"))
	s.Equal("true", req.Header.Get("x-upsert"))
	s.Equal("application/pdf", req.Header.Get("Content-Type"))
	s.Equal("pdf", s.bodies[0])
}

func (s *SupabaseBucketSuite) TestPutFailure() {
	s.status = http.StatusForbidden
	s.response = `{"error":"denied"}`

	err := s.bucket.Put(context.Background(), "k", strings.NewReader("x"), 1, "text/plain")
	s.Require().Error(err)
	s.Contains(err.Error(), "403")
}

func (s *SupabaseBucketSuite) TestDelete() {
	s.Require().NoError(s.bucket.Delete(context.Background(), "f1/aadhaar.pdf"))
	s.Equal(http.MethodDelete, s.requests[0].Method)

	s.status = http.StatusNotFound
	s.NoError(s.bucket.Delete(context.Background(), "gone"))
}

func (s *SupabaseBucketSuite) TestSignedURL() {
	s.response = `{"signedURL":"/object/sign/documents/f1/aadhaar.pdf?token=abc"}`

	url, err := s.bucket.SignedURL(context.Background(), "f1/aadhaar.pdf", DocumentURLTTL)
	s.Require().NoError(err)
	s.Equal(s.srv.URL+"/storage/v1/object/sign/documents/f1/aadhaar.pdf?token=abc", url)

	s.Equal("/storage/v1/object/sign/documents/f1/aadhaar.pdf", s.requests[0].URL.Path)

	var payload map[string]int
	s.Require().NoError(json.Unmarshal([]byte(s.bodies[0]), &payload))
	s.Equal(120, payload["expiresIn"])
}

func (s *SupabaseBucketSuite) TestKeySegmentsAreEscaped() {
	s.Require().NoError(s.bucket.Put(context.Background(), "f1/my doc#1?.pdf", strings.NewReader("x"), 1, "application/pdf"))

	s.Require().Len(s.requests, 1)
	s.Equal("/storage/v1/object/documents/f1/my%20doc%231%3F.pdf", s.requests[0].URL.EscapedPath())
	s.Equal("/storage/v1/object/documents/f1/my doc#1?.pdf", s.requests[0].URL.Path)
	s.Empty(s.requests[0].URL.RawQuery)
}

func (s *SupabaseBucketSuite) TestTraversalKeysRejected() {
	for _, key := range []string{"f1/../victim/aadhaar.pdf", "../aadhaar.pdf", "f1//a.pdf", "f1/./a.pdf", ""} {
		s.ErrorIs(s.bucket.Put(context.Background(), key, strings.NewReader("x"), 1, "application/pdf"), ErrInvalidKey, key)
		s.ErrorIs(s.bucket.Delete(context.Background(), key), ErrInvalidKey, key)
		_, err := s.bucket.SignedURL(context.Background(), key, DocumentURLTTL)
		s.ErrorIs(err, ErrInvalidKey, key)
	}
	s.Empty(s.requests)
}

func (s *SupabaseBucketSuite) TestSignedURLMissingObject() {
	s.status = http.StatusBadRequest
	s.response = `{"error":"not_found","message":"Object not found"}`

	_, err := s.bucket.SignedURL(context.Background(), "nope", VideoURLTTL)
	s.ErrorIs(err, ErrObjectNotFound)
}

func TestSupabaseBucketDefaultsClient(t *testing.T) {
	b := NewSupabaseBucket("https://x.supabase.co", "k", "b", nil)
	require.NotNil(t, b.httpClient)
	target, err := b.objectURL("", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://x.supabase.co/storage/v1/object/b/a.txt", target)
}

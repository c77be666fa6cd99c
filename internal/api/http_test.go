package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	app "sprayer-backend/internal/application"
	"sprayer-backend/internal/domain/entity"
	"sprayer-backend/internal/infrastructure/observability"
	"sprayer-backend/internal/infrastructure/vision"
)

type memRepo struct {
	analyses []*entity.ImageAnalysis
	sprays   []*entity.SprayLog
	fail     bool
}

func (r *memRepo) SaveAnalysis(ctx context.Context, a *entity.ImageAnalysis) error {
	if r.fail {
		return errors.New("db gone")
	}
	a.ID = uint(len(r.analyses) + 1)
	a.CreatedAt = time.Now()
	r.analyses = append(r.analyses, a)
	return nil
}

func (r *memRepo) SaveSpray(ctx context.Context, s *entity.SprayLog) error {
	if r.fail {
		return errors.New("db gone")
	}
	s.ID = uint(len(r.sprays) + 1)
	s.CreatedAt = time.Now()
	r.sprays = append(r.sprays, s)
	return nil
}

func newTestServer(t *testing.T, repo *memRepo) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc := app.NewAnalysisService(
		repo,
		nil,
		vision.NewGreenBiasClassifier(),
		nil,
		observability.NewMetrics(reg),
		0.6,
	)
	origins := []string{"http://localhost:3000"}
	return NewServer(svc, origins, t.TempDir(), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, url, field, filename string, data []byte, form map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range form {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAnalyzeEndpoint_GreenLeafSkips(t *testing.T) {
	repo := &memRepo{}
	handler := newTestServer(t, repo).Handler()

	req := multipartRequest(t, "/analyze", "file", "leaf.png", pngBytes(t, color.RGBA{G: 200, A: 255}), map[string]string{"node_id": "node-4"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, uint(1), resp.ID)
	require.Equal(t, "Healthy", resp.Label)
	require.Equal(t, "skip", resp.Decision)
	require.Equal(t, 0.0, resp.AmountML)
	require.Equal(t, 0, resp.DurationMS)

	require.Len(t, repo.analyses, 1)
	require.Equal(t, "node-4", repo.analyses[0].NodeID)
	require.Equal(t, "leaf.png", repo.analyses[0].ImageFilename)
	require.Empty(t, repo.sprays)
}

func TestAnalyzeEndpoint_RedLeafSprays(t *testing.T) {
	repo := &memRepo{}
	handler := newTestServer(t, repo).Handler()

	req := multipartRequest(t, "/analyze", "file", "leaf.png", pngBytes(t, color.RGBA{R: 200, A: 255}), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Infected", resp.Label)
	require.Equal(t, "spray", resp.Decision)
	require.Equal(t, 20.0, resp.AmountML)
	require.Equal(t, 2000, resp.DurationMS)
	require.Len(t, repo.sprays, 1)
}

func TestAnalyzeEndpoint_UndecodableImage(t *testing.T) {
	repo := &memRepo{}
	handler := newTestServer(t, repo).Handler()

	req := multipartRequest(t, "/analyze", "file", "junk.bin", []byte("not an image"), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "cannot decode image")
	require.Empty(t, repo.analyses)
}

func TestAnalyzeEndpoint_StorageFailure(t *testing.T) {
	repo := &memRepo{fail: true}
	handler := newTestServer(t, repo).Handler()

	req := multipartRequest(t, "/analyze", "file", "leaf.png", pngBytes(t, color.RGBA{G: 200, A: 255}), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "failed to record analysis")
}

func TestAnalyzeEndpoint_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(t, &memRepo{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, &memRepo{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUploadEndpoint_EchoesDimensions(t *testing.T) {
	handler := newTestServer(t, &memRepo{}).Handler()

	req := multipartRequest(t, "/upload", "photo", "leaf.png", pngBytes(t, color.RGBA{G: 100, A: 255}), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Width   int    `json:"width"`
		Height  int    `json:"height"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Image received!", resp.Message)
	require.Equal(t, 50, resp.Width)
	require.Equal(t, 50, resp.Height)
}

func TestFilesEndpoint_StoresUpload(t *testing.T) {
	srv := newTestServer(t, &memRepo{})
	handler := srv.Handler()

	req := multipartRequest(t, "/files", "file", "leaf.png", []byte("payload"), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message  string `json:"message"`
		FilePath string `json:"file_path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "File uploaded successfully", resp.Message)

	stored, err := os.ReadFile(resp.FilePath)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), stored)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := newTestServer(t, &memRepo{}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	handler := newTestServer(t, &memRepo{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, &memRepo{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sprayer_analyses_total")
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	app "sprayer-backend/internal/application"
	"sprayer-backend/internal/domain/port"
)

// Снимки с полевых камер невелики, 32 МБ хватает с запасом.
const maxUploadBytes = 32 << 20

// Server — HTTP-фасад конвейера анализа плюс демо-эндпоинты загрузки.
type Server struct {
	analysis  *app.AnalysisService
	origins   map[string]struct{}
	uploadDir string
	metrics   http.Handler
	srv       *http.Server
}

// NewServer создаёт сервер. metricsHandler обслуживает /metrics и
// приходит снаружи вместе с реестром счётчиков.
func NewServer(analysis *app.AnalysisService, corsOrigins []string, uploadDir string, metricsHandler http.Handler) *Server {
	origins := make(map[string]struct{}, len(corsOrigins))
	for _, o := range corsOrigins {
		origins[o] = struct{}{}
	}
	return &Server{
		analysis:  analysis,
		origins:   origins,
		uploadDir: uploadDir,
		metrics:   metricsHandler,
	}
}

// Handler собирает маршруты; отдельно от Start, чтобы тесты могли
// гонять его через httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/files", s.handleSaveFile)
	mux.HandleFunc("/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return s.cors(mux)
}

// Start запускает HTTP-сервер.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// analyzeResponse — тело ответа /analyze.
type analyzeResponse struct {
	ID           uint    `json:"id"`
	Label        string  `json:"label"`
	InfectedProb float64 `json:"infected_prob"`
	Decision     string  `json:"decision"`
	Reason       string  `json:"reason"`
	AmountML     float64 `json:"amount_ml"`
	DurationMS   int     `json:"duration_ms"`
}

// handleAnalyze прогоняет загруженный снимок через весь конвейер.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	res, err := s.analysis.Analyze(r.Context(), app.AnalyzeInput{
		NodeID:   r.FormValue("node_id"),
		Filename: header.Filename,
		Image:    imageData,
	})
	if err != nil {
		if errors.Is(err, port.ErrUndecodableImage) {
			writeError(w, http.StatusBadRequest, "cannot decode image")
			return
		}
		log.Printf("Analyze failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record analysis")
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		ID:           res.ID,
		Label:        res.Label,
		InfectedProb: res.InfectedProb,
		Decision:     string(res.Decision.Verdict),
		Reason:       res.Decision.Reason,
		AmountML:     res.Decision.AmountML,
		DurationMS:   res.Decision.DurationMS,
	})
}

// handleUpload — демо-эндпоинт: принимает снимок и возвращает его размеры.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo field is required")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot decode image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Image received!",
		"width":   cfg.Width,
		"height":  cfg.Height,
	})
}

// handleSaveFile — демо-эндпоинт: складывает файл в каталог загрузок.
// Имя дополняется uuid, чтобы одинаковые имена не затирали друг друга.
func (s *Server) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		log.Printf("Error creating upload dir: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	name := uuid.New().String() + "_" + filepath.Base(header.Filename)
	path := filepath.Join(s.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		log.Printf("Error creating file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("Error writing file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "File uploaded successfully",
		"file_path": path,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// cors пропускает запросы фронтенда с разрешённых origin'ов.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := s.origins[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

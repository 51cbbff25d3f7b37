// Package webapi serves the studio over HTTP: the option configuration, the
// default selections and batch generation from a multipart upload.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photo-style-studio/internal/batch"
	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/media"
	"photo-style-studio/internal/selection"
	"photo-style-studio/internal/studio"
)

const maxUploadBytes = 25 << 20

type Options struct {
	Generator    *batch.Generator
	Index        *catalog.Index
	Logger       *slog.Logger
	DefaultCount int
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
}

type Handler struct {
	gen          *batch.Generator
	idx          *catalog.Index
	logger       *slog.Logger
	defaultCount int
	gatherer     prometheus.Gatherer
}

type apiError struct {
	Error string `json:"error"`
}

type optionsResponse struct {
	Sections []catalog.Section `json:"sections"`
	Counts   []int             `json:"counts"`
}

type generateResponse struct {
	Requested int                    `json:"requested"`
	Images    []batch.GeneratedImage `json:"images"`
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	idx := opts.Index
	if idx == nil {
		idx = catalog.MustDefaultIndex()
	}
	count := opts.DefaultCount
	if !slices.Contains(studio.AllowedCounts, count) {
		count = studio.DefaultCount
	}

	return &Handler{
		gen:          opts.Generator,
		idx:          idx,
		logger:       logger,
		defaultCount: count,
		gatherer:     opts.Gatherer,
	}
}

// Router returns a router with every route and middleware installed.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(enableCORS, h.withLogging)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/options", h.handleOptions).Methods(http.MethodGet)
	r.HandleFunc("/api/selections/default", h.handleDefaultSelections).Methods(http.MethodGet)
	r.HandleFunc("/api/generate", h.handleGenerate).Methods(http.MethodPost, http.MethodOptions)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		Sections: h.idx.Sections(),
		Counts:   append([]int(nil), studio.AllowedCounts...),
	})
}

func (h *Handler) handleDefaultSelections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, selection.Defaults(h.idx))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	img, err := readImage(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: uploadMessage(err)})
		return
	}

	st, err := h.readSelections(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	count := h.defaultCount
	if raw := strings.TrimSpace(r.FormValue("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !slices.Contains(studio.AllowedCounts, n) {
			writeJSON(w, http.StatusBadRequest, apiError{Error: batch.ErrInvalidCount.Message})
			return
		}
		count = n
	}

	if h.gen == nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: batch.ErrMissingAPIKey.Message})
		return
	}

	// Dispatched requests run to completion even if the client goes away.
	images, err := h.gen.Generate(context.WithoutCancel(r.Context()), batch.Request{
		Selections: st,
		Image:      img,
		Count:      count,
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("generate failed", "err", err)
		}
		writeJSON(w, status, apiError{Error: batch.UserMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Requested: count, Images: images})
}

// readImage returns an empty image when no file was uploaded; the generator
// reports that as a validation error.
func readImage(r *http.Request) (media.Image, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return media.Image{}, nil
	}
	if err != nil {
		return media.Image{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return media.Image{}, err
	}
	if len(data) == 0 {
		return media.Image{}, nil
	}
	return media.FromDrop(header.Header.Get("Content-Type"), data)
}

func uploadMessage(err error) string {
	if errors.Is(err, media.ErrNotImage) {
		return "Only image files can be uploaded."
	}
	return "Failed to read the uploaded image."
}

func (h *Handler) readSelections(r *http.Request) (selection.State, error) {
	raw := strings.TrimSpace(r.FormValue("selections"))
	if raw == "" {
		return selection.Defaults(h.idx), nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return selection.State{}, errors.New("selections must be a JSON object")
	}
	return selection.Parse(h.idx, m)
}

func statusFor(err error) int {
	var ve *batch.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, batch.ErrEmptyResult):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
	})
}

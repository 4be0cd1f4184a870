package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jgivc/mediafetch/internal/common"
	"github.com/jgivc/mediafetch/internal/entity"
)

const (
	maxBodySize = 1 << 20

	statusSuccess = "success"
	statusError   = "error"
)

type DownloadService interface {
	StartJob(ctx context.Context, url string) (*entity.StartResult, error)
}

type StatusService interface {
	GetJob(ctx context.Context, id string) (*entity.Job, error)
	ListCatalog(ctx context.Context) ([]*entity.CatalogEntry, error)
}

type RevealService interface {
	OpenFolder(ctx context.Context, path string) error
}

type PageRenderer interface {
	Render(entries []*entity.CatalogEntry) (string, error)
}

type downloadRequest struct {
	URL string `json:"url"`
}

type openFolderRequest struct {
	Path string `json:"path"`
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	JobID   string `json:"job_id,omitempty"`
	Title   string `json:"title,omitempty"`
}

type videosResponse struct {
	Videos []*entity.CatalogEntry `json:"videos"`
}

func NewStartHandler(srv DownloadService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "StartHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req downloadRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")

			return
		}

		res, err := srv.StartJob(r.Context(), req.URL)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, common.ErrMetadataFetchFailed):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				log.Error("Cannot start download", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "Cannot start download")
			}

			return
		}

		writeJSON(w, http.StatusOK, &response{
			Status:  statusSuccess,
			Message: "Download started",
			JobID:   res.JobID,
			Title:   res.Title,
		})
	}
}

func NewProgressHandler(srv StatusService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ProgressHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		job, err := srv.GetJob(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrJobNotFound):
				writeError(w, http.StatusNotFound, "Job not found")
			default:
				writeError(w, http.StatusInternalServerError, "Cannot get job")
			}

			return
		}

		writeJSON(w, http.StatusOK, job)
	}
}

func NewVideosHandler(srv StatusService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "VideosHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := srv.ListCatalog(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Cannot list videos")

			return
		}

		if entries == nil {
			entries = []*entity.CatalogEntry{}
		}

		writeJSON(w, http.StatusOK, &videosResponse{Videos: entries})
	}
}

func NewOpenFolderHandler(srv RevealService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "OpenFolderHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req openFolderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")

			return
		}

		if err := srv.OpenFolder(r.Context(), req.Path); err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrPathNotFound):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				log.Error("Cannot open folder", slog.String("path", req.Path), slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "Cannot open folder")
			}

			return
		}

		writeJSON(w, http.StatusOK, &response{Status: statusSuccess})
	}
}

func NewHomeHandler(srv StatusService, page PageRenderer, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "HomeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := srv.ListCatalog(r.Context())
		if err != nil {
			http.Error(w, "Cannot get page", http.StatusInternalServerError)

			return
		}

		content, err := page.Render(entries)
		if err != nil {
			log.Error("Cannot render page", slog.Any("error", err))
			http.Error(w, "Cannot get page", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(content))
	}
}

func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	return json.NewDecoder(r.Body).Decode(dst)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, &response{Status: statusError, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

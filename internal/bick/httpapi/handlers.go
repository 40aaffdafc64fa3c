package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/romariotrain/bick-platform/internal/bick/domain"
	"github.com/romariotrain/bick-platform/internal/bick/gate"
	"github.com/romariotrain/bick-platform/internal/bick/models"
)

type Handler struct {
	svc *gate.Service
}

func New(svc *gate.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Bicks handles /bicks: POST registers an upload.
func (h *Handler) Bicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defer r.Body.Close()

	var req RegisterUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
		return
	}

	in := gate.RegisterUploadInput{
		Title:            req.Title,
		Description:      req.Description,
		OriginalFilename: req.OriginalFilename,
	}
	if req.OwnerID != nil {
		ownerID, err := uuid.Parse(*req.OwnerID)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid ownerId")
			return
		}
		in.OwnerID = &ownerID
	}

	res, err := h.svc.RegisterUpload(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterUploadResponse{
		Bick:       toBickResponse(res.Bick, nil),
		StorageKey: res.StorageKey,
		UploadURL:  res.UploadURL,
		ExpiresAt:  res.ExpiresAt,
	})
}

// BicksFromURL handles POST /bicks/from-url.
func (h *Handler) BicksFromURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defer r.Body.Close()

	var req CreateFromURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
		return
	}

	b, err := h.svc.CreateFromURL(r.Context(), gate.CreateFromURLInput{
		Title:            req.Title,
		SourceURL:        req.SourceURL,
		StorageKey:       req.StorageKey,
		OriginalFilename: req.OriginalFilename,
		ThumbnailURL:     req.ThumbnailURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBickResponse(b, nil))
}

// BickByID dispatches /bicks/{id} and its subresources.
func (h *Handler) BickByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bicks/")
	if rest == "" || rest == r.URL.Path {
		writeErrorJSON(w, http.StatusBadRequest, "missing id")
		return
	}

	if rest == "from-url" {
		h.BicksFromURL(w, r)
		return
	}

	idStr, action, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.getBick(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.removeBick(w, r, id)
	case action == "process" && r.Method == http.MethodPost:
		h.startProcessing(w, r, id)
	case action == "retry" && r.Method == http.MethodPost:
		h.retryBick(w, r, id)
	default:
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) getBick(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	b, list, err := h.svc.GetBick(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBickResponse(b, list))
}

func (h *Handler) removeBick(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	b, err := h.svc.Remove(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBickResponse(b, nil))
}

func (h *Handler) startProcessing(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	taskID, err := h.svc.StartProcessing(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, StartProcessingResponse{TaskID: taskID})
}

func (h *Handler) retryBick(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	b, err := h.svc.Retry(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toBickResponse(b, nil))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		writeErrorJSON(w, http.StatusBadRequest, "invalid argument")
	case errors.Is(err, models.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		writeErrorJSON(w, http.StatusConflict, "conflict")
	default:
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/bick/assets"
	"github.com/romariotrain/bick-platform/internal/bick/extract"
)

// Acquirer resolves a remote URL into a local audio file.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string) (*extract.Result, error)
}

// Uploader publishes the acquired audio into object storage.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	PublicURL(key string) string
}

// ExtractHandler serves the source acquisition endpoint. It acquires
// audio in-process and places the result into storage, so the client
// gets back a ready-to-use storage key.
type ExtractHandler struct {
	acquirer Acquirer
	store    Uploader
	logger   zerolog.Logger
	idGen    func() uuid.UUID
}

func NewExtractHandler(acquirer Acquirer, store Uploader, logger zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{
		acquirer: acquirer,
		store:    store,
		logger:   logger.With().Str("component", "extract_api").Logger(),
		idGen:    uuid.New,
	}
}

func (h *ExtractHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeExtractError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Extract handles POST /extract. Every failure answers with the same
// envelope the success path uses, so clients parse one shape.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeExtractError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return
	}
	defer r.Body.Close()

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeExtractError(w, http.StatusBadRequest, extract.CodeInvalidURL, "invalid json body")
		return
	}

	res, err := h.acquirer.Acquire(r.Context(), req.URL)
	if err != nil {
		aerr, ok := extract.AsError(err)
		if !ok {
			aerr = &extract.Error{Code: extract.CodeExtractionFailed, Message: "extraction failed"}
		}
		h.logger.Warn().Err(err).Str("url", req.URL).Str("code", string(aerr.Code)).Msg("acquisition failed")
		writeExtractError(w, aerr.HTTPStatus(), aerr.Code, aerr.Message)
		return
	}
	defer res.Cleanup()

	data, err := os.ReadFile(res.LocalAudioPath)
	if err != nil {
		h.logger.Error().Err(err).Msg("read acquired audio")
		writeExtractError(w, http.StatusBadGateway, extract.CodeExtractionFailed, "read acquired audio")
		return
	}

	key := assets.KeyFor(h.idGen().String(), assets.NameAudio)
	if err := h.store.Upload(r.Context(), key, "audio/mpeg", data); err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("upload acquired audio")
		writeExtractError(w, http.StatusBadGateway, extract.CodeExtractionFailed, "store acquired audio")
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Success:      true,
		AudioURL:     h.store.PublicURL(key),
		StorageKey:   key,
		DurationMs:   res.DurationMs,
		SourceTitle:  res.Title,
		ThumbnailURL: res.ThumbnailURL,
	})
}

func writeExtractError(w http.ResponseWriter, status int, code extract.Code, message string) {
	writeJSON(w, status, ExtractErrorResponse{
		Success: false,
		Error:   message,
		Code:    string(code),
	})
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/bick-platform/internal/bick/gate"
	"github.com/romariotrain/bick-platform/internal/bick/models"
	"github.com/romariotrain/bick-platform/internal/bick/repository"
)

type stubQueue struct {
	enqueued []models.ProcessingJob
	err      error
}

func (q *stubQueue) EnqueueProcess(_ context.Context, job models.ProcessingJob) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, job)
	return "bick-" + job.BickID, nil
}

type stubPresigner struct{}

func (stubPresigner) PresignPut(_ context.Context, key, _ string, ttl time.Duration) (string, time.Time, error) {
	return "https://s3.example.com/put/" + key, time.Now().Add(ttl), nil
}

func newTestRouter(t *testing.T) (http.Handler, *repository.MemoryRepository, *stubQueue) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	queue := &stubQueue{}
	svc := gate.New(repo, queue, stubPresigner{})
	return NewRouter(New(svc)), repo, queue
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterUpload_EndToEnd(t *testing.T) {
	router, _, queue := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/bicks", RegisterUploadRequest{
		Title:            "Morning Take",
		OriginalFilename: "take.wav",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp RegisterUploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processing", resp.Bick.Status)
	assert.Equal(t, "uploads/"+resp.Bick.ID.String()+"/original.wav", resp.StorageKey)
	assert.NotEmpty(t, resp.UploadURL)
	// обработка стартует отдельным запросом
	assert.Empty(t, queue.enqueued)
}

func TestRegisterUpload_MissingTitle(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/bicks", RegisterUploadRequest{OriginalFilename: "a.mp3"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartProcessing_Endpoint(t *testing.T) {
	router, repo, queue := newTestRouter(t)

	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &models.Bick{
		ID:               id,
		Status:           models.ProcessingStatus,
		Title:            "t",
		OriginalFilename: "a.mp3",
	}))

	rec := doJSON(t, router, http.MethodPost, "/bicks/"+id.String()+"/process", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp StartProcessingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bick-"+id.String(), resp.TaskID)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, id.String(), queue.enqueued[0].BickID)
}

func TestGetBick_NotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/bicks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBick_InvalidID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/bicks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBick_WithAssets(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	id := uuid.New()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Bick{ID: id, Status: models.ProcessingStatus, Title: "t", OriginalFilename: "a.mp3"}))
	require.NoError(t, repo.InsertAsset(ctx, &models.BickAsset{
		BickID:     id,
		AssetType:  models.AssetAudio,
		StorageKey: "uploads/" + id.String() + "/audio.mp3",
		CDNURL:     "https://cdn.example.com/uploads/" + id.String() + "/audio.mp3",
		MimeType:   "audio/mpeg",
		SizeBytes:  1024,
	}))

	rec := doJSON(t, router, http.MethodGet, "/bicks/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Assets, 1)
	assert.Equal(t, "audio", resp.Assets[0].Type)
	assert.Equal(t, "https://cdn.example.com/uploads/"+id.String()+"/audio.mp3", resp.Assets[0].URL)
}

func TestRetry_OnlyFromFailed(t *testing.T) {
	router, repo, queue := newTestRouter(t)

	ctx := context.Background()
	failedID := uuid.New()
	require.NoError(t, repo.Create(ctx, &models.Bick{ID: failedID, Status: models.FailedStatus, Title: "t", OriginalFilename: "a.mp3"}))
	liveID := uuid.New()
	require.NoError(t, repo.Create(ctx, &models.Bick{ID: liveID, Status: models.LiveStatus, Title: "t", OriginalFilename: "a.mp3"}))

	rec := doJSON(t, router, http.MethodPost, "/bicks/"+failedID.String()+"/retry", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.enqueued, 1)

	// live нельзя вернуть в processing
	rec = doJSON(t, router, http.MethodPost, "/bicks/"+liveID.String()+"/retry", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRemove_LiveBick(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &models.Bick{ID: id, Status: models.LiveStatus, Title: "t", OriginalFilename: "a.mp3"}))

	rec := doJSON(t, router, http.MethodDelete, "/bicks/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "removed", resp.Status)
}

func TestBicks_MethodNotAllowed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/bicks", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

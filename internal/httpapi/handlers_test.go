package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choplin/medialedger/internal/config"
	"github.com/choplin/medialedger/internal/database"
	"github.com/choplin/medialedger/internal/media"
	"github.com/choplin/medialedger/internal/usecase"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	dbCtx, err := database.CreateDatabase(filepath.Join(t.TempDir(), "medialedger.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})
	uc := usecase.NewMedia(dbCtx, config.RetryConfig{
		MaxAttempts: 3,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  time.Millisecond,
	})
	return Router(uc)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

const createBody = `{
  "mdmId": 42,
  "name": "Shibuya Vision",
  "owner": "north-outdoor",
  "state": "operating",
  "totalMonitorCount": 4,
  "resolutions": [{"width": 1920, "height": 1080, "ppi": 96}]
}`

func TestCreateAndGet(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/medias", createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[media.Media](t, w)
	assert.Equal(t, int64(42), created.MdmID)
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, "Shibuya Vision", created.Name)
	require.Len(t, created.Resolutions, 1)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/medias/%d", created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[media.Media](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Attributes, got.Attributes)
}

func TestUpdateListAndHistory(t *testing.T) {
	r := setupRouter(t)

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/medias", createBody).Code)

	w := do(t, r, http.MethodPatch, "/medias", `{"mdmId": 42, "name": "X"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[media.Media](t, w)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, "north-outdoor", updated.Owner)

	w = do(t, r, http.MethodGet, "/medias", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]media.Media](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, updated.ID, list[0].ID)

	w = do(t, r, http.MethodGet, "/medias/history/42", "")
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]media.Media](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, "Shibuya Vision", history[0].Name)
}

func TestRemove(t *testing.T) {
	r := setupRouter(t)

	created := decode[media.Media](t, do(t, r, http.MethodPost, "/medias", createBody))
	path := fmt.Sprintf("/medias/%d", created.ID)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, path, "").Code)

	w := do(t, r, http.MethodGet, "/medias", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]media.Media](t, w))
}

func TestErrorStatuses(t *testing.T) {
	r := setupRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"update without mdm id", http.MethodPatch, "/medias", `{"name": "X"}`, http.StatusBadRequest},
		{"update unknown asset", http.MethodPatch, "/medias", `{"mdmId": 7, "name": "X"}`, http.StatusNotFound},
		{"malformed body", http.MethodPost, "/medias", `{"mdmId":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/medias", `{"mdmId": 1, "colour": "red"}`, http.StatusBadRequest},
		{"non-numeric id", http.MethodGet, "/medias/abc", "", http.StatusBadRequest},
		{"missing row", http.MethodGet, "/medias/999", "", http.StatusNotFound},
		{"missing history", http.MethodGet, "/medias/history/999", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			body := decode[map[string]string](t, w)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("x: %w", media.ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusFor(media.ErrInvalid))
	assert.Equal(t, http.StatusConflict, statusFor(media.ErrConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(media.ErrDataCorruption))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}

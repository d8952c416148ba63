// Package httpapi exposes the media ledger over JSON/HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/choplin/medialedger/internal/logging"
	"github.com/choplin/medialedger/internal/media"
	"github.com/choplin/medialedger/internal/usecase"
)

// CreateHandler handles POST /medias
func CreateHandler(uc *usecase.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in media.CreateInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		m, err := uc.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, "create media", err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// UpdateHandler handles PATCH /medias
func UpdateHandler(uc *usecase.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in media.UpdateInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		m, err := uc.Update(r.Context(), in)
		if err != nil {
			writeServiceError(w, "update media", err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// ListHandler handles GET /medias
func ListHandler(uc *usecase.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		medias, err := uc.List(r.Context())
		if err != nil {
			writeServiceError(w, "list medias", err)
			return
		}
		writeJSON(w, http.StatusOK, medias)
	}
}

// GetHandler handles GET /medias/{id}
func GetHandler(uc *usecase.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathInt(w, r, "id")
		if !ok {
			return
		}

		m, err := uc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, "get media", err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// RemoveHandler handles DELETE /medias/{id}
func RemoveHandler(uc *usecase.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathInt(w, r, "id")
		if !ok {
			return
		}

		if err := uc.Remove(r.Context(), id); err != nil {
			writeServiceError(w, "remove media", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HistoryHandler handles GET /medias/history/{mdmId}
func HistoryHandler(uc *usecase.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mdmID, ok := pathInt(w, r, "mdmId")
		if !ok {
			return
		}

		versions, err := uc.History(r.Context(), mdmID)
		if err != nil {
			writeServiceError(w, "media history", err)
			return
		}
		writeJSON(w, http.StatusOK, versions)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return v, true
}

// statusFor maps the media error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, media.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, media.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("op", op).Msg("request failed")
	}
	writeError(w, status, fmt.Sprintf("failed to %s: %v", op, err))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

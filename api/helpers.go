package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/garnizeh/vagas/internal/records"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type listResponse[T any] struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Items  []T   `json:"items"`
}

func newListResponse[T any](l records.List[T]) listResponse[T] {
	items := l.Items
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Total: l.Total, Limit: l.Page.Limit, Offset: l.Page.Offset, Items: items}
}

// readValidated reads the request body, checks it against the named schema
// and decodes it into dst. It writes the error response itself and reports
// whether the handler may continue.
func readValidated(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
			return false
		}
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "could not read request body")
		return false
	}
	if !json.Valid(body) {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid json")
		return false
	}

	fieldErrs, err := validateBody(r.Context(), schema, body)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return false
	}
	if len(fieldErrs) > 0 {
		writeErrorDetails(w, r, http.StatusUnprocessableEntity, CodeValidationFailed, "request body failed validation", fieldErrs)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return false
	}

	return true
}

// pathID parses the {id} route variable.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid id")
		return 0, false
	}

	return id, true
}

// parsePage reads skip (or offset) and limit. Malformed values fall back to
// the defaults applied by records.Page.Normalize.
func parsePage(r *http.Request) records.Page {
	q := r.URL.Query()
	var p records.Page

	off := q.Get("skip")
	if off == "" {
		off = q.Get("offset")
	}
	if v, err := strconv.Atoi(off); err == nil {
		p.Offset = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		p.Limit = v
	}

	return p.Normalize()
}

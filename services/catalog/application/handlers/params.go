package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/httpx"
)

// itemID parses the {id} path parameter. On failure it writes a 400 and
// returns false.
func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter, falling back to def
// when it is absent. On a malformed value it writes a 400 and returns false.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}

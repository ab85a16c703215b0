package httpapi

import (
	"net/http"
	"strconv"
)

type ScrapeHandler struct {
	Runner PassRunner
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Runner.Status())
}

// Run starts a pass and returns 202. With ?wait=true it runs the pass in
// the request and returns its summary.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	wait := false
	if v := r.URL.Query().Get("wait"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_wait", "wait must be a boolean")
			return
		}
		wait = b
	}

	if !wait {
		if err := h.Runner.Start(r.Context()); err != nil {
			WriteFailure(w, r, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
		return
	}

	sum, err := h.Runner.Run(r.Context())
	if err != nil {
		WriteFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sum)
}

package httpapi

import "net/http"

type HealthHandler struct {
	Repo JobLister
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"jobs": h.Repo.Len(),
	})
}

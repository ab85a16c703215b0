package httpapi

import (
	"net/http"
	"strconv"

	"internship-scraper/internal/render"
)

type JobsHandler struct {
	Repo    JobLister
	Listing render.Options
}

type jobView struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	PostedDate  string `json:"posted_date,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// List returns stored jobs newest first. ?limit=N caps the result.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	jobs := render.SortNewestFirst(h.Repo.GetAllJobs())
	total := len(jobs)
	if limit > 0 && limit < len(jobs) {
		jobs = jobs[:limit]
	}

	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobView{
			Title:       j.Title,
			CompanyName: j.CompanyName,
			Location:    j.Location,
			PostedDate:  j.PostedDate(),
			Description: j.Description,
			URL:         j.URL,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"jobs":  out,
	})
}

func (h JobsHandler) Markdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := render.Markdown(w, h.Repo.GetAllJobs(), h.Listing); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "render_failed", err.Error())
	}
}

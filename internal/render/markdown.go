package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/scrape/util"
)

type Options struct {
	Title string
	Intro []string
}

// SortNewestFirst returns a copy of jobs ordered by posted date, newest
// first. Jobs without a date go last; ties keep their stored order.
func SortNewestFirst(jobs []domain.JobRecord) []domain.JobRecord {
	out := make([]domain.JobRecord, len(jobs))
	copy(out, jobs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PostedAt, out[j].PostedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

func Markdown(w io.Writer, jobs []domain.JobRecord, opts Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n\n", opts.Title)
	for _, line := range opts.Intro {
		fmt.Fprintf(bw, "%s\n\n", line)
	}
	fmt.Fprintf(bw, "## Available positions (%d offers)\n\n", len(jobs))

	for _, j := range SortNewestFirst(jobs) {
		d := j.ToDisplay()
		posted := d["posted_date"]
		if posted == "" {
			posted = "unknown"
		}

		// Display only; stored fields stay as scraped.
		fmt.Fprintf(bw, "### %s\n", util.CleanText(d["company_name"]))
		fmt.Fprintf(bw, "- **Position:** %s\n", util.CleanText(d["title"]))
		fmt.Fprintf(bw, "- **Location:** %s\n", util.CleanText(d["location"]))
		fmt.Fprintf(bw, "- **Posted on:** %s\n", posted)
		if d["url"] != "" {
			fmt.Fprintf(bw, "- [Apply here](%s)\n", d["url"])
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteFile renders to a temp file next to path and renames it into place.
func WriteFile(path string, jobs []domain.JobRecord, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Markdown(tmp, jobs, opts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

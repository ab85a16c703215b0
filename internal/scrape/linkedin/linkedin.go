package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"internship-scraper/internal/config"
	"internship-scraper/internal/domain"
	"internship-scraper/internal/scrape"
	"internship-scraper/internal/scrape/types"
	"internship-scraper/internal/scrape/util"
	"internship-scraper/pkg/logging"

	"github.com/PuerkitoBio/goquery"
)

const (
	cardSelector     = "div.job-search-card"
	titleSelector    = "h3.base-search-card__title"
	companySelector  = "h4.base-search-card__subtitle"
	locationSelector = "span.job-search-card__location"
	linkSelector     = "a.base-card__full-link"
)

type Scraper struct {
	host      string
	keywords  string
	userAgent string
	locations []config.Location

	hc      *http.Client
	limiter *util.HostLimiter
	filter  scrape.TitleFilter
	log     *logging.Logger
}

func New(cfg config.Config, limiter *util.HostLimiter, log *logging.Logger) *Scraper {
	timeout := time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if limiter == nil {
		limiter = util.NewHostLimiter(cfg.Scrape.RequestsPerSecond, cfg.Scrape.Burst)
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Scraper{
		host:      strings.TrimRight(cfg.Scrape.Host, "/"),
		keywords:  cfg.Scrape.Keywords,
		userAgent: cfg.Scrape.UserAgent,
		locations: cfg.Scrape.Locations,
		hc:        &http.Client{Timeout: timeout},
		limiter:   limiter,
		filter:    scrape.NewTitleFilter(cfg),
		log:       log.With("source", "linkedin"),
	}
}

func (s *Scraper) Name() string { return "linkedin" }

// Fetchers returns one fetcher per configured location.
func (s *Scraper) Fetchers() []types.Fetcher {
	out := make([]types.Fetcher, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, &locationFetcher{s: s, loc: loc})
	}
	return out
}

// SearchURL builds the guest search URL for one location.
func (s *Scraper) SearchURL(loc config.Location) (string, error) {
	if strings.TrimSpace(loc.GeoID) == "" {
		return "", errors.New("linkedin: geo id is required")
	}
	if strings.TrimSpace(s.keywords) == "" {
		return "", errors.New("linkedin: keywords are required")
	}
	kw := strings.ReplaceAll(url.QueryEscape(s.keywords), "+", "%20")
	return fmt.Sprintf("%s/?keywords=%s&geoId=%s", s.host, kw, url.QueryEscape(loc.GeoID)), nil
}

func (s *Scraper) FetchLocation(ctx context.Context, loc config.Location) ([]domain.JobRecord, error) {
	res, err := s.fetchLocation(ctx, loc)
	return res.Records, err
}

func (s *Scraper) fetchLocation(ctx context.Context, loc config.Location) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: s.Name() + ":" + loc.Name}

	searchURL, err := s.SearchURL(loc)
	if err != nil {
		return res, err
	}
	s.log.Info("fetching jobs", "location", loc.Name, "geo_id", loc.GeoID, "keywords", s.keywords)

	if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
		return res, &ScrapingError{URL: searchURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return res, &ScrapingError{URL: searchURL, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.hc.Do(req)
	if err != nil {
		return res, &ScrapingError{URL: searchURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return res, &ScrapingError{URL: searchURL, Status: resp.StatusCode}
	}

	parsed, err := ParseCards(resp.Body, s.filter)
	parsed.Source = res.Source
	if err != nil {
		return parsed, err
	}

	s.log.Info(fmt.Sprintf("found %d dev jobs out of %d total (filtered out %d)",
		len(parsed.Records), parsed.Seen, parsed.Filtered), "location", loc.Name)
	return parsed, nil
}

// ParseCards extracts the job cards of a search results page. Cards whose
// title fails filter are counted and skipped; a kept card missing its company
// or location fails the whole page.
func ParseCards(r io.Reader, filter scrape.TitleFilter) (types.ScrapeResult, error) {
	var res types.ScrapeResult

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return res, fmt.Errorf("linkedin parse html: %w", err)
	}

	cards := doc.Find(cardSelector)
	res.Seen = cards.Length()

	var perr error
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		title := card.Find(titleSelector).First()
		if title.Length() == 0 || !filter.Keep(title.Text()) {
			res.Filtered++
			return true
		}

		rec, err := parseCard(i, card)
		if err != nil {
			perr = err
			return false
		}
		res.Records = append(res.Records, rec)
		return true
	})
	if perr != nil {
		return res, perr
	}
	return res, nil
}

func parseCard(i int, card *goquery.Selection) (domain.JobRecord, error) {
	company := card.Find(companySelector).First()
	if company.Length() == 0 {
		return domain.JobRecord{}, &ParsingError{Card: i, Field: "company"}
	}
	location := card.Find(locationSelector).First()
	if location.Length() == 0 {
		return domain.JobRecord{}, &ParsingError{Card: i, Field: "location"}
	}

	rec := domain.JobRecord{
		Title:       strings.TrimSpace(card.Find(titleSelector).First().Text()),
		CompanyName: strings.TrimSpace(company.Text()),
		Location:    strings.TrimSpace(location.Text()),
	}
	if href, ok := card.Find(linkSelector).First().Attr("href"); ok {
		rec.URL = util.CanonicalizeURL(href)
	}
	if dt, ok := card.Find("time").First().Attr("datetime"); ok {
		if t, err := time.Parse(domain.PostedDateLayout, strings.TrimSpace(dt)); err == nil {
			rec.PostedAt = &t
		}
	}
	return rec, nil
}

type locationFetcher struct {
	s   *Scraper
	loc config.Location
}

func (f *locationFetcher) Name() string { return f.s.Name() + ":" + f.loc.Name }

func (f *locationFetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	return f.s.fetchLocation(ctx, f.loc)
}

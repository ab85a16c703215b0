package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var drivers = map[string]bool{
	"sqlite": true, "file": true, "memory": true,
	"redis": true, "mongo": true, "neo4j": true,
}

// NormalizeAndValidate returns a normalized copy plus everything wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, key)
		}
		return ys
	}

	out.Filters.RequireAny = trimList(out.Filters.RequireAny)
	out.Filters.IncludeAny = trimList(out.Filters.IncludeAny)
	out.Filters.ExcludeAny = trimList(out.Filters.ExcludeAny)
	out.Storage.Driver = strings.ToLower(strings.TrimSpace(out.Storage.Driver))
	out.App.LogLevel = strings.ToLower(strings.TrimSpace(out.App.LogLevel))

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}

	if u, err := url.Parse(out.Scrape.Host); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("scrape.host must be an absolute URL, got %q", out.Scrape.Host)
	}
	if strings.TrimSpace(out.Scrape.Keywords) == "" {
		res.addErr("scrape.keywords is required")
	}
	if len(out.Scrape.Locations) == 0 {
		res.addErr("scrape.locations must have at least 1 entry")
	}
	geo := map[string]bool{}
	for i, l := range out.Scrape.Locations {
		if strings.TrimSpace(l.GeoID) == "" {
			res.addErr("scrape.locations[%d].geo_id is required", i)
			continue
		}
		if geo[l.GeoID] {
			res.addWarn("scrape.locations[%d] repeats geo_id %s", i, l.GeoID)
		}
		geo[l.GeoID] = true
	}
	if out.Scrape.TimeoutSeconds <= 0 {
		res.addErr("scrape.timeout_seconds must be > 0")
	}
	if out.Scrape.RequestsPerSecond <= 0 {
		res.addErr("scrape.requests_per_second must be > 0")
	} else if out.Scrape.RequestsPerSecond > 5 {
		res.addWarn("scrape.requests_per_second is high (%.1f) and may get the scraper blocked.", out.Scrape.RequestsPerSecond)
	}
	if out.Scrape.Burst <= 0 {
		res.addErr("scrape.burst must be > 0")
	}
	if out.Scrape.Concurrency <= 0 {
		res.addErr("scrape.concurrency must be > 0")
	}

	if len(out.Filters.RequireAny) == 0 {
		res.addWarn("filters.require_any is empty; every title passes the first check.")
	}
	if len(out.Filters.IncludeAny) == 0 {
		res.addErr("filters.include_any must have at least 1 term")
	}
	excl := map[string]bool{}
	for _, e := range out.Filters.ExcludeAny {
		excl[e] = true
	}
	for _, in := range out.Filters.IncludeAny {
		if excl[in] {
			res.addWarn("filter term appears in both include and exclude: %q", in)
		}
	}

	if !drivers[out.Storage.Driver] {
		res.addErr("storage.driver %q is not one of sqlite, file, memory, redis, mongo, neo4j", out.Storage.Driver)
	}
	switch out.Storage.Driver {
	case "redis":
		if out.Storage.Redis.Addr == "" && out.Storage.Redis.URL == "" {
			res.addErr("storage.redis.addr or storage.redis.url is required when storage.driver=redis")
		}
	case "mongo":
		if out.Storage.Mongo.URI == "" {
			res.addErr("storage.mongo.uri is required when storage.driver=mongo")
		}
		if out.Storage.Mongo.Database == "" || out.Storage.Mongo.Collection == "" {
			res.addErr("storage.mongo.database and storage.mongo.collection are required when storage.driver=mongo")
		}
	case "neo4j":
		if out.Storage.Neo4j.URI == "" {
			res.addErr("storage.neo4j.uri is required when storage.driver=neo4j")
		}
	case "memory":
		res.addWarn("storage.driver=memory keeps nothing between runs.")
	}

	if strings.TrimSpace(out.Output.Path) == "" {
		res.addErr("output.path is required")
	}

	return out, res
}

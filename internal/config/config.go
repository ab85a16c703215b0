// internal/config/config.go
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Location struct {
	Name  string `yaml:"name"`
	GeoID string `yaml:"geo_id"`
}

type Storage struct {
	Driver string `yaml:"driver"` // sqlite | file | memory | redis | mongo | neo4j
	Path   string `yaml:"path"`   // sqlite/file; defaults under app.data_dir

	Redis struct {
		Addr           string `yaml:"addr"`
		URL            string `yaml:"url"`
		Password       string `yaml:"password"`
		KeyringAccount string `yaml:"keyring_account"`
		DB             int    `yaml:"db"`
		Prefix         string `yaml:"prefix"`
	} `yaml:"redis"`

	Mongo struct {
		URI            string `yaml:"uri"`
		Username       string `yaml:"username"`
		Password       string `yaml:"password"`
		KeyringAccount string `yaml:"keyring_account"`
		Database       string `yaml:"database"`
		Collection     string `yaml:"collection"`
	} `yaml:"mongo"`

	Neo4j struct {
		URI            string `yaml:"uri"`
		Username       string `yaml:"username"`
		Password       string `yaml:"password"`
		KeyringAccount string `yaml:"keyring_account"`
		Database       string `yaml:"database"`
	} `yaml:"neo4j"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port"`
		DataDir  string `yaml:"data_dir"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Scrape struct {
		Host              string     `yaml:"host"`
		Keywords          string     `yaml:"keywords"`
		Locations         []Location `yaml:"locations"`
		TimeoutSeconds    int        `yaml:"timeout_seconds"`
		RequestsPerSecond float64    `yaml:"requests_per_second"`
		Burst             int        `yaml:"burst"`
		Concurrency       int        `yaml:"concurrency"`
		UserAgent         string     `yaml:"user_agent"`
	} `yaml:"scrape"`

	Filters struct {
		RequireAny []string `yaml:"require_any"`
		IncludeAny []string `yaml:"include_any"`
		ExcludeAny []string `yaml:"exclude_any"`
	} `yaml:"filters"`

	Storage Storage `yaml:"storage"`

	Output struct {
		Path  string   `yaml:"path"`
		Title string   `yaml:"title"`
		Intro []string `yaml:"intro"`
	} `yaml:"output"`
}

func Default() Config {
	var cfg Config

	cfg.App.Port = 38471
	cfg.App.DataDir = "."
	cfg.App.LogLevel = "info"

	cfg.Scrape.Host = "https://www.linkedin.com/jobs/search"
	cfg.Scrape.Keywords = "Summer 2025"
	cfg.Scrape.Locations = []Location{
		{Name: "United States", GeoID: "103644278"},
		{Name: "Canada", GeoID: "101174742"},
		{Name: "United Kingdom", GeoID: "101165590"},
		{Name: "France", GeoID: "105015875"},
	}
	cfg.Scrape.TimeoutSeconds = 30
	cfg.Scrape.RequestsPerSecond = 1.0
	cfg.Scrape.Burst = 2
	cfg.Scrape.Concurrency = 4
	cfg.Scrape.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	cfg.Filters.RequireAny = []string{"intern", "internship"}
	cfg.Filters.IncludeAny = []string{
		"software", "developer", "engineer", "backend", "frontend",
		"fullstack", "full-stack", "data", "engineering", "mobile",
		"qa", "security", "web", "cloud", "devops",
	}
	cfg.Filters.ExcludeAny = []string{
		"marketing", "sales", "business", "finance", "accounting",
		"hr", "human resources", "recruiter", "customer", "support",
		"service", "content", "design", "product manager",
		"project manager", "operations",
	}

	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Redis.Addr = "localhost:6379"
	cfg.Storage.Redis.Prefix = "internships"
	cfg.Storage.Mongo.URI = "mongodb://localhost:27017"
	cfg.Storage.Mongo.Database = "internships"
	cfg.Storage.Mongo.Collection = "jobs"
	cfg.Storage.Neo4j.URI = "neo4j://localhost:7687"
	cfg.Storage.Neo4j.Username = "neo4j"

	cfg.Output.Path = "README.md"
	cfg.Output.Title = "Summer 2025 internship opportunities"
	cfg.Output.Intro = []string{
		"This list gets updated daily.",
		"Posted on refers to the date when the offer was posted on LinkedIn.",
	}
	return cfg
}

// Load reads path over Default(), so keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// StoragePath resolves the sqlite/file location.
func (c Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	name := "internships.db"
	if c.Storage.Driver == "file" {
		name = "jobs.jsonl"
	}
	return filepath.Join(c.App.DataDir, name)
}

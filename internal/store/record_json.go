package store

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"internship-scraper/internal/domain"
)

// storedRecord is the JSON form of a JobRecord used by the file and redis
// backends. Keys match domain.JobRecord's tags. An identity field that is not
// valid UTF-8 is carried byte for byte in its *_raw twin and left empty.
type storedRecord struct {
	Title       string     `json:"title"`
	CompanyName string     `json:"company_name"`
	Location    string     `json:"location"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`

	TitleRaw       []byte `json:"title_raw,omitempty"`
	CompanyNameRaw []byte `json:"company_name_raw,omitempty"`
	LocationRaw    []byte `json:"location_raw,omitempty"`
}

func toStored(j domain.JobRecord) storedRecord {
	s := storedRecord{
		PostedAt:    j.PostedAt,
		Description: j.Description,
		URL:         j.URL,
	}
	s.Title, s.TitleRaw = splitRaw(j.Title)
	s.CompanyName, s.CompanyNameRaw = splitRaw(j.CompanyName)
	s.Location, s.LocationRaw = splitRaw(j.Location)
	return s
}

func (s storedRecord) record() domain.JobRecord {
	return domain.JobRecord{
		Title:       joinRaw(s.Title, s.TitleRaw),
		CompanyName: joinRaw(s.CompanyName, s.CompanyNameRaw),
		Location:    joinRaw(s.Location, s.LocationRaw),
		PostedAt:    s.PostedAt,
		Description: s.Description,
		URL:         s.URL,
	}
}

func splitRaw(v string) (string, []byte) {
	if utf8.ValidString(v) {
		return v, nil
	}
	return "", []byte(v)
}

func joinRaw(v string, raw []byte) string {
	if raw != nil {
		return string(raw)
	}
	return v
}

// EncodeRecord encodes j so that DecodeRecord returns identical identity
// fields, whatever bytes they hold.
func EncodeRecord(j domain.JobRecord) ([]byte, error) {
	return json.Marshal(toStored(j))
}

func DecodeRecord(data []byte) (domain.JobRecord, error) {
	var s storedRecord
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.JobRecord{}, err
	}
	return s.record(), nil
}

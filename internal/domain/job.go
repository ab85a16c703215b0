package domain

import "time"

// JobRecord is a single parsed posting as handed over by a scraper.
// Absent optional values are zero values: nil PostedAt, empty Description/URL.
type JobRecord struct {
	Title       string     `json:"title" bson:"title"`
	CompanyName string     `json:"company_name" bson:"company_name"`
	Location    string     `json:"location" bson:"location"`
	PostedAt    *time.Time `json:"posted_at,omitempty" bson:"posted_at,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	URL         string     `json:"url,omitempty" bson:"url,omitempty"`
}

const PostedDateLayout = "2006-01-02"

// PostedDate returns the posted date as YYYY-MM-DD, or "" when unknown.
func (j JobRecord) PostedDate() string {
	if j.PostedAt == nil || j.PostedAt.IsZero() {
		return ""
	}
	return j.PostedAt.UTC().Format(PostedDateLayout)
}

// ToDisplay flattens the record for renderers and templates.
func (j JobRecord) ToDisplay() map[string]string {
	return map[string]string{
		"title":        j.Title,
		"company_name": j.CompanyName,
		"location":     j.Location,
		"posted_date":  j.PostedDate(),
		"description":  j.Description,
		"url":          j.URL,
	}
}

// Clone returns a copy that shares no memory with j.
func (j JobRecord) Clone() JobRecord {
	if j.PostedAt != nil {
		t := *j.PostedAt
		j.PostedAt = &t
	}
	return j
}

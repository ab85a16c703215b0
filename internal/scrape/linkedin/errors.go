package linkedin

import "fmt"

// ScrapingError means the search page could not be retrieved.
type ScrapingError struct {
	URL    string
	Status int // 0 when the request itself failed
	Err    error
}

func (e *ScrapingError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("error while requesting %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("error while requesting %s: %v", e.URL, e.Err)
}

func (e *ScrapingError) Unwrap() error { return e.Err }

// ParsingError means a job card that passed the title filter lacked a
// required element.
type ParsingError struct {
	Card  int
	Field string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("error while parsing job card %d: missing %s", e.Card, e.Field)
}

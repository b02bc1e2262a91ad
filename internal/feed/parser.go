package feed

import (
	"encoding/json"
	"fmt"
	"log"

	"internwatch/internal/model"
)

// ParseError reports a document that cannot be read as a listing snapshot
// at all. Individually malformed records are skipped, not escalated.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse snapshot: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse snapshot: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

type roleJSON struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Company     string   `json:"company_name"`
	Title       string   `json:"title"`
	Locations   []string `json:"locations"`
	URL         string   `json:"url"`
	Season      string   `json:"season"`
	Sponsorship string   `json:"sponsorship"`
	DatePosted  int64    `json:"date_posted"`
	Visible     bool     `json:"is_visible"`
	Active      bool     `json:"active"`
}

// ParseSnapshot decodes the raw listing document. The document must be a
// JSON array; records that fail to decode or lack company/title are skipped
// with a log line so one bad entry never aborts the cycle.
func ParseSnapshot(raw []byte) (model.Snapshot, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return model.Snapshot{}, &ParseError{Reason: "document is not a JSON array", Err: err}
	}

	snapshot := model.Snapshot{Roles: make([]model.RoleRecord, 0, len(items))}
	for i, item := range items {
		var rec roleJSON
		if err := json.Unmarshal(item, &rec); err != nil {
			log.Printf("[feed] skipping malformed record at index %d: %v", i, err)
			continue
		}
		if rec.Company == "" || rec.Title == "" {
			log.Printf("[feed] skipping record at index %d: missing company or title", i)
			continue
		}
		snapshot.Roles = append(snapshot.Roles, model.RoleRecord{
			ID:          rec.ID,
			Source:      rec.Source,
			Company:     rec.Company,
			Title:       rec.Title,
			Locations:   rec.Locations,
			URL:         rec.URL,
			Season:      rec.Season,
			Sponsorship: rec.Sponsorship,
			DatePosted:  rec.DatePosted,
			Visible:     rec.Visible,
			Active:      rec.Active,
		})
	}

	return snapshot, nil
}

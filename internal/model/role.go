package model

// RoleRecord is one internship posting as read from a snapshot of the
// listing feed. Immutable once parsed.
type RoleRecord struct {
	ID          string
	Source      string
	Company     string
	Title       string
	Locations   []string
	URL         string
	Season      string
	Sponsorship string
	DatePosted  int64
	Visible     bool
	Active      bool
}

// Snapshot is one full read of the listing document. Roles keep the
// document's order so notifications go out deterministically.
type Snapshot struct {
	Roles []RoleRecord
}

// NotifiedRole is the durable record kept per dispatched notification.
type NotifiedRole struct {
	Key     string
	Company string
	Title   string
	URL     string
	Active  bool
}

package domain

import "time"

// Caps applied to the two append-only logs on every mutation. Oldest
// entries are evicted first once the cap is exceeded.
const (
	ActivityCap = 500
	AuditCap    = 1000
)

// ActivityEntry is a single line in the panel's activity feed.
type ActivityEntry struct {
	Timestamp time.Time `json:"ts"`
	Message   string    `json:"msg"`
}

// AuditEntry records an administrative action for later review.
type AuditEntry struct {
	Timestamp time.Time `json:"ts"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
}

// Alert is a standing notice shown to admins on the dashboard.
type Alert struct {
	Timestamp time.Time `json:"ts"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
}

// Document is the aggregate root persisted as a single JSON file. The
// field set is the on-disk format; there is no schema version.
type Document struct {
	Users              []User             `json:"users"`
	Tokens             map[string]Session `json:"tokens"`
	Activity           []ActivityEntry    `json:"activity"`
	Audit              []AuditEntry       `json:"audit"`
	MonitoredProcesses []string           `json:"monitoredProcesses"`
	Alerts             []Alert            `json:"alerts"`
}

// DefaultDocument returns a fresh empty document. It is substituted
// silently whenever the persisted file is missing or unparsable.
func DefaultDocument() Document {
	return Document{
		Users:              []User{},
		Tokens:             map[string]Session{},
		Activity:           []ActivityEntry{},
		Audit:              []AuditEntry{},
		MonitoredProcesses: []string{},
		Alerts:             []Alert{},
	}
}

// Normalize replaces nil collections with empty ones so a document
// decoded from a sparse JSON file is always safe to mutate.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Tokens == nil {
		d.Tokens = map[string]Session{}
	}
	if d.Activity == nil {
		d.Activity = []ActivityEntry{}
	}
	if d.Audit == nil {
		d.Audit = []AuditEntry{}
	}
	if d.MonitoredProcesses == nil {
		d.MonitoredProcesses = []string{}
	}
	if d.Alerts == nil {
		d.Alerts = []Alert{}
	}
}

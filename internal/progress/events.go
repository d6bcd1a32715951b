package progress

import "time"

type EventType string

const (
	EventScanStarted  EventType = "scan_started"
	EventFileScanned  EventType = "file_scanned"
	EventScanWarning  EventType = "scan_warning"
	EventScanFinished EventType = "scan_finished"
)

type Event struct {
	Type       EventType `json:"type"`
	At         time.Time `json:"at"`
	File       string    `json:"file,omitempty"`
	Message    string    `json:"message,omitempty"`
	Scanned    int       `json:"scanned,omitempty"`
	Total      int       `json:"total,omitempty"`
	Violations int       `json:"violations,omitempty"`
}

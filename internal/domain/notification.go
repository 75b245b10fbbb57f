package domain

// Severity grades a notification
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is the payload handed to the notification dispatcher.
// Delivery (email, chat, webhook) is a collaborator's concern.
type Notification struct {
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Targets  []string `json:"targets,omitempty"`
}

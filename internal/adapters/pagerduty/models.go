package pagerduty

import "time"

// Ref is PagerDuty's reference object
type Ref struct {
	ID      string `json:"id"`
	Type    string `json:"type,omitempty"`
	Summary string `json:"summary,omitempty"`
	HTMLURL string `json:"html_url,omitempty"`
}

// User is the part of a PagerDuty user document we use
// Name and Email are present when the query includes users
type User struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// OnCall is one rotation entry from /oncalls
type OnCall struct {
	EscalationLevel  int        `json:"escalation_level"`
	User             User       `json:"user"`
	Schedule         *Ref       `json:"schedule"`
	EscalationPolicy *Ref       `json:"escalation_policy"`
	Start            *time.Time `json:"start"`
	End              *time.Time `json:"end"`
}

// Service is the part of a PagerDuty service document we use
type Service struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Incident is the part of a created incident we report back
type Incident struct {
	ID             string `json:"id"`
	IncidentNumber int    `json:"incident_number"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	HTMLURL        string `json:"html_url"`
}

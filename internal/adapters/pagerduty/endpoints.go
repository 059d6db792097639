package pagerduty

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"

	perr "oncallbot/internal/platform/errors"
)

// OnCallsQuery is the parameter set for /oncalls
type OnCallsQuery struct {
	TimeZone     string
	ScheduleIDs  []string
	IncludeUsers bool
}

// Values encodes the query the way PagerDuty expects array params
func (q OnCallsQuery) Values() url.Values {
	v := url.Values{}
	tz := q.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	v.Set("time_zone", tz)
	if q.IncludeUsers {
		v.Add("include[]", "users")
	}
	for _, id := range q.ScheduleIDs {
		v.Add("schedule_ids[]", id)
	}
	return v
}

// Key is a canonical, order-insensitive form of the query
func (q OnCallsQuery) Key() string {
	ids := slices.Clone(q.ScheduleIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	tz := q.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	users := "0"
	if q.IncludeUsers {
		users = "1"
	}
	return "tz=" + tz + ";users=" + users + ";schedules=" + strings.Join(ids, ",")
}

// OnCalls walks /oncalls and indexes entries by "escalation_level-user_id", lowest level first
func (c *Client) OnCalls(ctx context.Context, q OnCallsQuery) (Index[OnCall], error) {
	return Paginate[OnCall](ctx, c, PageRequest{
		Path:      "/oncalls",
		Params:    q.Values(),
		Content:   "oncalls",
		Secondary: "user",
		SortBy:    "escalation_level",
	})
}

// ServicesByEscalationPolicy lists the services attached to an escalation policy
func (c *Client) ServicesByEscalationPolicy(ctx context.Context, policyID string) ([]Service, error) {
	q := url.Values{}
	q.Add("escalation_policy_ids[]", policyID)
	var out struct {
		Services *[]Service `json:"services"`
	}
	if err := c.GetJSON(ctx, "/services", q, &out); err != nil {
		return nil, err
	}
	if out.Services == nil {
		return nil, perr.Malformedf("pagerduty /services: response has no services")
	}
	return *out.Services, nil
}

// CreateIncident opens an incident on serviceID on behalf of from
func (c *Client) CreateIncident(ctx context.Context, from, title, serviceID string) (Incident, error) {
	if from == "" {
		return Incident{}, perr.Configf("pagerduty from email is not configured")
	}
	body := map[string]any{
		"incident": map[string]any{
			"type":  "incident",
			"title": title,
			"service": map[string]string{
				"id":   serviceID,
				"type": "service_reference",
			},
		},
	}
	var out struct {
		Incident *Incident `json:"incident"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/incidents",
		body:   body,
		header: http.Header{"From": []string{from}},
		want:   http.StatusCreated,
	}, &out)
	if err != nil {
		return Incident{}, err
	}
	if out.Incident == nil {
		return Incident{}, perr.Malformedf("pagerduty /incidents: response has no incident")
	}
	c.log.Info().Str("incident_id", out.Incident.ID).Str("service_id", serviceID).Msg("pagerduty incident created")
	return *out.Incident, nil
}

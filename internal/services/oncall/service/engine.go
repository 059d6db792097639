package service

import (
	"context"
	"time"

	"oncallbot/internal/adapters/pagerduty"
	"oncallbot/internal/platform/cache"
	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
	dom "oncallbot/internal/services/oncall/domain"
)

// Rotation is the rotation service surface the engine calls
type Rotation interface {
	OnCalls(ctx context.Context, q pagerduty.OnCallsQuery) (pagerduty.Index[pagerduty.OnCall], error)
	ServicesByEscalationPolicy(ctx context.Context, policyID string) ([]pagerduty.Service, error)
	CreateIncident(ctx context.Context, from, title, serviceID string) (pagerduty.Incident, error)
}

// Config for the engine
type Config struct {
	// DefaultScheduleIDs backs Resolution.UseDefault
	DefaultScheduleIDs []string
	// FromEmail is the requester identity for incident creation
	FromEmail string
	// CacheTTL bounds how long on-call sets and the service id are reused
	CacheTTL time.Duration
}

const serviceIDKey = "serviceId"

// Engine answers on-call queries through a read-through TTL cache
type Engine struct {
	api      Rotation
	cfg      Config
	defaults dom.ScheduleParams
	oncalls  *cache.Loader[pagerduty.Index[pagerduty.OnCall]]
	services *cache.Loader[string]
	log      logger.Logger
}

// NewEngine builds an Engine over api
func NewEngine(api Rotation, cfg Config, log logger.Logger) *Engine {
	return &Engine{
		api: api,
		cfg: cfg,
		defaults: dom.ScheduleParams{
			TimeZone:     "UTC",
			ScheduleIDs:  cfg.DefaultScheduleIDs,
			IncludeUsers: true,
		},
		oncalls:  cache.NewLoader(cache.New[pagerduty.Index[pagerduty.OnCall]](cfg.CacheTTL)),
		services: cache.NewLoader(cache.New[string](cfg.CacheTTL)),
		log:      log,
	}
}

// Defaults returns the params used for Resolution.UseDefault
func (e *Engine) Defaults() dom.ScheduleParams { return e.defaults }

// OnCallsFor implements domain.EnginePort
func (e *Engine) OnCallsFor(ctx context.Context, r dom.Resolution) ([]dom.Entry, error) {
	switch r.Kind {
	case dom.Resolved:
		return e.GetOnCalls(ctx, r.Params)
	case dom.UseDefault:
		return e.GetOnCalls(ctx, e.defaults)
	default:
		return nil, perr.Configf("no schedule configured")
	}
}

// GetOnCalls implements domain.EnginePort
func (e *Engine) GetOnCalls(ctx context.Context, p dom.ScheduleParams) ([]dom.Entry, error) {
	ix, err := e.index(ctx, p)
	if err != nil {
		return nil, err
	}
	return ix.Values(), nil
}

func (e *Engine) index(ctx context.Context, p dom.ScheduleParams) (pagerduty.Index[pagerduty.OnCall], error) {
	key := p.Key()
	ix, hit, err := e.oncalls.GetOrLoad(ctx, key, func(ctx context.Context) (pagerduty.Index[pagerduty.OnCall], error) {
		return e.api.OnCalls(ctx, p.Query())
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("cache_key", key).Msg("on-call fetch failed")
		return ix, err
	}
	logger.C(ctx).Debug().Str("cache_key", key).Bool("hit", hit).Int("entries", ix.Len()).Msg("on-call set")
	return ix, nil
}

// ResolveServiceID implements domain.EnginePort
func (e *Engine) ResolveServiceID(ctx context.Context) (string, error) {
	id, _, err := e.services.GetOrLoad(ctx, serviceIDKey, func(ctx context.Context) (string, error) {
		ix, err := e.index(ctx, e.defaults)
		if err != nil {
			return "", err
		}
		var policy string
		for _, oc := range ix.Values() {
			if oc.EscalationPolicy != nil && oc.EscalationPolicy.ID != "" {
				policy = oc.EscalationPolicy.ID
				break
			}
		}
		if policy == "" {
			return "", perr.NotFoundf("no escalation policy found in on-call data")
		}
		svcs, err := e.api.ServicesByEscalationPolicy(ctx, policy)
		if err != nil {
			return "", err
		}
		if len(svcs) == 0 || svcs[0].ID == "" {
			return "", perr.NotFoundf("no service found for escalation policy %s", policy)
		}
		e.log.Debug().Str("escalation_policy", policy).Str("service_id", svcs[0].ID).Msg("resolved service")
		return svcs[0].ID, nil
	})
	return id, err
}

// CreateIncident implements domain.EnginePort
func (e *Engine) CreateIncident(ctx context.Context, title string) (pagerduty.Incident, error) {
	if e.cfg.FromEmail == "" {
		return pagerduty.Incident{}, perr.Configf("pagerduty from email is not configured")
	}
	serviceID, err := e.ResolveServiceID(ctx)
	if err != nil {
		return pagerduty.Incident{}, err
	}
	return e.api.CreateIncident(ctx, e.cfg.FromEmail, title, serviceID)
}

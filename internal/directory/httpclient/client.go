// Package httpclient talks to an external Unit Directory over HTTP. Calls go
// through a circuit breaker; writes return compensations that undo them.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"unitgate/internal/directory"
	dirmetrics "unitgate/internal/directory/metrics"
	"unitgate/internal/directory/server"
	"unitgate/pkg/platform/circuit"
	"unitgate/pkg/platform/sentinel"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

type Client struct {
	http    *resty.Client
	breaker *circuit.Breaker
	metrics *dirmetrics.Metrics
	logger  *slog.Logger
}

type Option func(*Client)

func WithMetrics(m *dirmetrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBreaker replaces the default breaker (5 failures, 10s cooldown).
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout).
			SetRetryCount(cfg.RetryCount).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			}).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = circuit.New("unit-directory", circuit.WithStateChangeHook(c.onBreakerChange))
	}
	return c
}

func (c *Client) onBreakerChange(name string, from, to circuit.State) {
	c.logger.Warn("directory circuit breaker state changed",
		"breaker", name,
		"from", from.String(),
		"to", to.String(),
	)
	if c.metrics != nil {
		c.metrics.SetBreakerState(name, int(to))
	}
}

func (c *Client) LookupByPhone(ctx context.Context, phone string) ([]*directory.OccupantRecord, error) {
	var out []*directory.OccupantRecord
	err := c.do(ctx, "lookup_by_phone", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("phone", phone).SetResult(&out).Get("/v1/occupants")
	})
	return out, err
}

func (c *Client) GetUnit(ctx context.Context, unit directory.UnitRef) (*directory.OccupantRecord, error) {
	var out directory.OccupantRecord
	err := c.do(ctx, "get_unit", func(r *resty.Request) (*resty.Response, error) {
		return unitRequest(r, unit).SetResult(&out).Get("/v1/buildings/{building_id}/units/{unit}")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FindBuilding(ctx context.Context, ref directory.BuildingRef) (*directory.Building, error) {
	var out directory.Building
	err := c.do(ctx, "find_building", func(r *resty.Request) (*resty.Response, error) {
		r.SetResult(&out)
		if !ref.ID.IsNil() {
			return r.SetPathParam("building_id", ref.ID.String()).Get("/v1/buildings/{building_id}")
		}
		return r.SetQueryParam("code", ref.Code).Get("/v1/buildings")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BuildingsByManagerPhone(ctx context.Context, phone string) ([]*directory.Building, error) {
	var out []*directory.Building
	err := c.do(ctx, "buildings_by_manager", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("phone", phone).SetResult(&out).Get("/v1/managers/{phone}/buildings")
	})
	return out, err
}

// UpsertOccupant writes the occupant and returns a compensation that puts
// back the previous record, or deletes the unit's record if there was none.
func (c *Client) UpsertOccupant(ctx context.Context, unit directory.UnitRef, data directory.OccupantData) (*directory.WriteResult, error) {
	var out server.UpsertResponse
	err := c.do(ctx, "upsert_occupant", func(r *resty.Request) (*resty.Response, error) {
		return unitRequest(r, unit).SetBody(data).SetResult(&out).Put("/v1/buildings/{building_id}/units/{unit}/occupant")
	})
	if err != nil {
		return nil, err
	}

	previous := out.Previous
	return &directory.WriteResult{
		Record: out.Record,
		Compensate: func(ctx context.Context) error {
			if previous == nil {
				return c.do(ctx, "compensate_upsert", func(r *resty.Request) (*resty.Response, error) {
					return unitRequest(r, unit).Delete("/v1/buildings/{building_id}/units/{unit}/occupant")
				})
			}
			return c.do(ctx, "compensate_upsert", func(r *resty.Request) (*resty.Response, error) {
				return unitRequest(r, unit).SetBody(previous.OccupantData).Put("/v1/buildings/{building_id}/units/{unit}/occupant")
			})
		},
	}, nil
}

func (c *Client) AddFamilyMember(ctx context.Context, unit directory.UnitRef, member directory.FamilyMember) (*directory.WriteResult, error) {
	var out server.FamilyResponse
	err := c.do(ctx, "add_family_member", func(r *resty.Request) (*resty.Response, error) {
		return unitRequest(r, unit).SetBody(member).SetResult(&out).Post("/v1/buildings/{building_id}/units/{unit}/family")
	})
	if err != nil {
		return nil, err
	}

	res := &directory.WriteResult{Record: out.Record, Compensate: func(context.Context) error { return nil }}
	if out.Added {
		res.Compensate = func(ctx context.Context) error {
			return c.do(ctx, "compensate_family", func(r *resty.Request) (*resty.Response, error) {
				return unitRequest(r, unit).
					SetPathParam("phone", member.Phone).
					Delete("/v1/buildings/{building_id}/units/{unit}/family/{phone}")
			})
		}
	}
	return res, nil
}

// do runs one call through the breaker. Transport errors and 5xx count as
// failures and surface as sentinel.ErrUnavailable; 404 is ErrNotFound.
func (c *Client) do(ctx context.Context, op string, call func(*resty.Request) (*resty.Response, error)) error {
	if err := c.breaker.Allow(); err != nil {
		c.observe(op, "rejected", 0)
		return fmt.Errorf("directory %s: %w: %w", op, sentinel.ErrUnavailable, err)
	}

	start := time.Now()
	resp, err := call(c.http.R().SetContext(ctx))
	elapsed := time.Since(start)
	if err != nil {
		c.breaker.RecordFailure()
		c.observe(op, "error", elapsed)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("directory %s: %w", op, err)
		}
		return fmt.Errorf("directory %s: %w: %w", op, sentinel.ErrUnavailable, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= http.StatusInternalServerError:
		c.breaker.RecordFailure()
		c.observe(op, "error", elapsed)
		return fmt.Errorf("directory %s: status %d: %w", op, status, sentinel.ErrUnavailable)
	case status == http.StatusNotFound:
		c.breaker.RecordSuccess()
		c.observe(op, "not_found", elapsed)
		return fmt.Errorf("directory %s: %w", op, sentinel.ErrNotFound)
	case status >= http.StatusBadRequest:
		c.breaker.RecordSuccess()
		c.observe(op, "rejected", elapsed)
		return fmt.Errorf("directory %s: status %d: %w", op, status, sentinel.ErrInvalidInput)
	}
	c.breaker.RecordSuccess()
	c.observe(op, "ok", elapsed)
	return nil
}

func (c *Client) observe(op, outcome string, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveCall(op, outcome, elapsed.Seconds())
	}
}

func unitRequest(r *resty.Request, unit directory.UnitRef) *resty.Request {
	return r.SetPathParams(map[string]string{
		"building_id": unit.BuildingID.String(),
		"unit":        unit.UnitNumber,
	})
}

var _ directory.Directory = (*Client)(nil)

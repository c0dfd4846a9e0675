package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/chatcal/internal/google"
	"github.com/teemow/chatcal/internal/instrumentation"
	"github.com/teemow/chatcal/internal/logging"
)

// Operation names used for errors, logs and metrics.
const (
	OpQuickAdd = "quick_add"
	OpList     = "list"
)

// APIRecorder records Google API operations.
// *instrumentation.Metrics implements it.
type APIRecorder interface {
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// Client wraps the Google Calendar service
type Client struct {
	svc      *calendar.Service
	recorder APIRecorder
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	endpoint   string
	httpClient *http.Client
	recorder   APIRecorder
	logger     *slog.Logger
}

// WithEndpoint overrides the Calendar API base URL.
func WithEndpoint(url string) ClientOption {
	return func(o *clientOptions) {
		o.endpoint = url
	}
}

// WithHTTPClient replaces the authenticated HTTP client. The token source
// passed to NewClient is ignored when this is set.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithRecorder sets the recorder for Google API metrics.
func WithRecorder(r APIRecorder) ClientOption {
	return func(o *clientOptions) {
		o.recorder = r
	}
}

// WithLogger sets the logger used by the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient creates a Calendar client whose requests are authenticated with
// tokens from ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...ClientOption) (*Client, error) {
	o := &clientOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		if ts == nil {
			return nil, fmt.Errorf("token source cannot be nil")
		}
		httpClient = google.NewHTTPClient(ts)
	}

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if o.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		svc:      svc,
		recorder: o.recorder,
		logger:   logging.WithService(logger, "calendar"),
	}, nil
}

// QuickAdd creates an event from a free-text description.
func (c *Client) QuickAdd(ctx context.Context, calendarID, text string) (*Event, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, "calendar", OpQuickAdd,
		attribute.String(instrumentation.SpanAttrCalendar, calendarID))

	start := time.Now()
	created, err := c.svc.Events.QuickAdd(calendarID, text).Context(ctx).Do()
	c.observe(ctx, OpQuickAdd, start, err)
	instrumentation.EndSpan(span, err)
	if err != nil {
		return nil, newProviderError(OpQuickAdd, err)
	}

	ev := toEvent(created)
	return &ev, nil
}

// ListUpcoming returns at most maxResults single events starting at or after
// from, ordered by start time.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, from time.Time, maxResults int64) ([]Event, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, "calendar", OpList,
		attribute.String(instrumentation.SpanAttrCalendar, calendarID))

	start := time.Now()
	events, err := c.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	c.observe(ctx, OpList, start, err)
	instrumentation.EndSpan(span, err)
	if err != nil {
		return nil, newProviderError(OpList, err)
	}

	result := make([]Event, 0, len(events.Items))
	for _, item := range events.Items {
		result = append(result, toEvent(item))
	}

	return result, nil
}

func (c *Client) observe(ctx context.Context, op string, start time.Time, err error) {
	duration := time.Since(start)
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
		c.logger.Warn("calendar request failed",
			logging.Operation(op),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
	} else {
		c.logger.Debug("calendar request completed",
			logging.Operation(op),
			slog.Duration(logging.KeyDuration, duration))
	}

	if c.recorder != nil {
		c.recorder.RecordGoogleAPIOperation(ctx, "calendar", op, status, duration)
	}
}

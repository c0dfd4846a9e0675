package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/chatcal/internal/calendar"
	"github.com/teemow/chatcal/internal/chat"
	"github.com/teemow/chatcal/internal/command"
	"github.com/teemow/chatcal/internal/logging"
	"github.com/teemow/chatcal/internal/timefmt"
)

const (
	// DefaultCalendarID is the user's main calendar.
	DefaultCalendarID = "primary"

	// ListLimit is the number of events ListUpcoming asks for.
	ListLimit = 5

	// MsgNoEvents is the reply when nothing is scheduled.
	MsgNoEvents = "No upcoming events found."

	// MsgSetupStarted is the reply once a setup prompt has been sent.
	MsgSetupStarted = "I sent you a link to authorize calendar access. Reply to it with the code Google gives you."
)

// Permission groups used by the calendar commands.
const (
	PermAddEvents   command.Permission = "addEvents"
	PermSetupPlugin command.Permission = "setupPlugin"
)

// EventService is the calendar provider. *calendar.Client implements it.
type EventService interface {
	QuickAdd(ctx context.Context, calendarID, text string) (*calendar.Event, error)
	ListUpcoming(ctx context.Context, calendarID string, from time.Time, maxResults int64) ([]calendar.Event, error)
}

// SetupStarter starts the authorization flow. *auth.Controller implements it.
type SetupStarter interface {
	BeginSetup(ctx context.Context, userID, adapter string) (string, error)
}

// Calendar holds the calendar command handlers.
type Calendar struct {
	events     EventService
	setup      SetupStarter
	calendarID string
	now        func() time.Time
	logger     *slog.Logger

	help func(userID string) string
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithCalendarID sets the calendar the commands operate on.
func WithCalendarID(id string) Option {
	return func(c *Calendar) {
		if id != "" {
			c.calendarID = id
		}
	}
}

// WithClock overrides the time source used for listing and formatting.
func WithClock(now func() time.Time) Option {
	return func(c *Calendar) {
		c.now = now
	}
}

// WithLogger sets the plugin's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calendar) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates the calendar handlers. setup may be nil, in which case the
// setup command is not offered.
func New(events EventService, setup SetupStarter, opts ...Option) *Calendar {
	c := &Calendar{
		events:     events,
		setup:      setup,
		calendarID: DefaultCalendarID,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithService(c.logger, "calendar")
	return c
}

// QuickAdd creates an event from a free-text description.
func (c *Calendar) QuickAdd(ctx context.Context, text string) (string, error) {
	ev, err := c.events.QuickAdd(ctx, c.calendarID, text)
	if err != nil {
		return "", err
	}

	start := timefmt.EventStart(*ev, c.now())
	return fmt.Sprintf("%s - %s created successfully.", start, ev.Summary), nil
}

// ListUpcoming lists the next events starting from now.
func (c *Calendar) ListUpcoming(ctx context.Context) (string, error) {
	now := c.now()

	events, err := c.events.ListUpcoming(ctx, c.calendarID, now, ListLimit)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return MsgNoEvents, nil
	}

	lines := make([]string, 0, len(events)+1)
	lines = append(lines, eventCount(len(events)))
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf("%s - %s (%s)",
			timefmt.EventStart(ev, now), ev.Summary, timefmt.EventRelative(ev, now)))
	}
	return strings.Join(lines, "\n"), nil
}

func eventCount(n int) string {
	if n == 1 {
		return "1 event found"
	}
	return fmt.Sprintf("%d events found", n)
}

// Rules returns the calendar commands in precedence order.
func (c *Calendar) Rules() []command.Rule {
	rules := []command.Rule{
		command.MustRule("schedule", `^schedule\s*(.+)`, PermAddEvents,
			"schedule <event> on <date> at <time> - schedule an event", c.handleQuickAdd),
		command.MustRule("events", `^(?:events|calendar list).*`, command.Public,
			"events - list the next 5 events", c.handleList),
	}
	if c.setup != nil {
		rules = append(rules, command.MustRule("setup", `^calendar setup`, PermSetupPlugin,
			"calendar setup - link a Google calendar", c.handleSetup))
	}
	rules = append(rules, command.MustRule("help", `^calendar help`, command.Public,
		"calendar help - show this list", c.handleHelp))
	return rules
}

// Dispatcher builds a dispatcher over Rules. The help command lists what the
// sender may run according to authorizer.
func (c *Calendar) Dispatcher(authorizer command.Authorizer, opts ...command.DispatcherOption) *command.Dispatcher {
	d := command.NewDispatcher(authorizer, c.Rules(), opts...)
	c.help = d.Help
	return d
}

func (c *Calendar) handleQuickAdd(ctx context.Context, m command.Match, _ chat.Message) (string, error) {
	return c.QuickAdd(ctx, strings.TrimSpace(m.Payload))
}

func (c *Calendar) handleList(ctx context.Context, _ command.Match, _ chat.Message) (string, error) {
	return c.ListUpcoming(ctx)
}

func (c *Calendar) handleSetup(ctx context.Context, _ command.Match, msg chat.Message) (string, error) {
	if _, err := c.setup.BeginSetup(ctx, msg.UserID, msg.Adapter); err != nil {
		return "", fmt.Errorf("failed to start calendar setup: %w", err)
	}
	return MsgSetupStarted, nil
}

func (c *Calendar) handleHelp(_ context.Context, _ command.Match, msg chat.Message) (string, error) {
	if c.help != nil {
		return c.help(msg.UserID), nil
	}

	lines := make([]string, 0, 4)
	for _, r := range c.Rules() {
		lines = append(lines, r.Help)
	}
	return strings.Join(lines, "\n"), nil
}

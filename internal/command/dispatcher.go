package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/chatcal/internal/chat"
	"github.com/teemow/chatcal/internal/logging"
)

// ErrUnauthorized is returned when the first matching rule requires a
// permission the sender does not hold.
var ErrUnauthorized = errors.New("not permitted")

// Recorder records command invocations.
// *instrumentation.Metrics implements it.
type Recorder interface {
	RecordCommandInvocation(ctx context.Context, command, status string, duration time.Duration)
}

// Result is the outcome of a dispatched command.
type Result struct {
	// Command is the name of the rule that matched.
	Command string

	// Reply is the handler's reply text.
	Reply string
}

// Dispatcher matches messages against rules in registration order.
type Dispatcher struct {
	rules      []Rule
	authorizer Authorizer
	recorder   Recorder
	logger     *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder sets the recorder for command metrics.
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher over rules. A nil authorizer only lets
// public commands through.
func NewDispatcher(authorizer Authorizer, rules []Rule, opts ...DispatcherOption) *Dispatcher {
	if authorizer == nil {
		authorizer = NewGroupAuthorizer(nil)
	}

	d := &Dispatcher{
		rules:      append([]Rule(nil), rules...),
		authorizer: authorizer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the first rule matching msg.Text. matched is false when no
// rule matches; the message is not a command for this dispatcher. When the
// sender lacks the rule's permission, err is ErrUnauthorized and the handler
// is not called.
func (d *Dispatcher) Dispatch(ctx context.Context, msg chat.Message) (res Result, matched bool, err error) {
	text := strings.TrimSpace(msg.Text)

	for _, rule := range d.rules {
		m, ok := rule.match(text)
		if !ok {
			continue
		}

		res.Command = rule.Name
		logger := logging.WithCommand(d.logger, rule.Name).With(logging.UserHash(msg.UserID), logging.Adapter(msg.Adapter))

		if !d.Allowed(msg.UserID, rule.Permission) {
			logger.Info("command rejected", slog.String("permission", string(rule.Permission)))
			d.record(ctx, rule.Name, logging.StatusUnauthorized, 0)
			return res, true, fmt.Errorf("%s requires %s: %w", rule.Name, rule.Permission, ErrUnauthorized)
		}

		start := time.Now()
		reply, err := rule.Handler(ctx, m, msg)
		duration := time.Since(start)

		if err != nil {
			logger.Warn("command failed", slog.Duration(logging.KeyDuration, duration), logging.Err(err))
			d.record(ctx, rule.Name, logging.StatusError, duration)
			return res, true, err
		}

		logger.Debug("command handled", slog.Duration(logging.KeyDuration, duration))
		d.record(ctx, rule.Name, logging.StatusSuccess, duration)
		res.Reply = reply
		return res, true, nil
	}

	return Result{}, false, nil
}

// Allowed reports whether userID may run commands requiring perm.
func (d *Dispatcher) Allowed(userID string, perm Permission) bool {
	return perm == Public || d.authorizer.Authorized(userID, perm)
}

// Help lists the commands userID is allowed to run, one per line, in rule
// order. Rules without help text are skipped.
func (d *Dispatcher) Help(userID string) string {
	var b strings.Builder
	for _, rule := range d.rules {
		if rule.Help == "" || !d.Allowed(userID, rule.Permission) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(rule.Help)
	}
	return b.String()
}

func (d *Dispatcher) record(ctx context.Context, name, status string, duration time.Duration) {
	if d.recorder != nil {
		d.recorder.RecordCommandInvocation(ctx, name, status, duration)
	}
}

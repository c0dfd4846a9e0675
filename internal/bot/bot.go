package bot

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/chatcal/internal/auth"
	"github.com/teemow/chatcal/internal/calendar"
	"github.com/teemow/chatcal/internal/chat"
	"github.com/teemow/chatcal/internal/command"
	"github.com/teemow/chatcal/internal/instrumentation"
	"github.com/teemow/chatcal/internal/logging"
)

// User-visible failure replies.
const (
	MsgNotPermitted   = "Sorry, you are not permitted to do that."
	MsgProviderFailed = "Calendar request failed: "
	MsgFailed         = "Sorry, something went wrong handling that command."
)

// Dispatcher runs commands. *command.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg chat.Message) (command.Result, bool, error)
}

// SetupCompleter consumes setup replies. *auth.Controller implements it.
type SetupCompleter interface {
	CompleteSetup(ctx context.Context, msg chat.Message) bool
}

// Response is what the bot answers to one message.
type Response struct {
	// Handled is false when no component claimed the message.
	Handled bool

	// Reply is the text to send back, empty when the component already
	// talked to the user itself.
	Reply string
}

// Bot routes messages to the setup flow or the dispatcher.
type Bot struct {
	dispatcher Dispatcher
	setup      SetupCompleter
	logger     *slog.Logger
}

// New creates a bot. setup may be nil when the setup flow is disabled.
func New(dispatcher Dispatcher, setup SetupCompleter, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		dispatcher: dispatcher,
		setup:      setup,
		logger:     logging.WithService(logger, "bot"),
	}
}

// Handle processes one inbound message.
func (b *Bot) Handle(ctx context.Context, msg chat.Message) Response {
	ctx, span := instrumentation.StartMessageSpan(ctx, msg.Adapter, logging.AnonymizeUser(msg.UserID))

	// The controller tells the user how the setup went.
	if b.setup != nil && b.setup.CompleteSetup(ctx, msg) {
		instrumentation.EndSpan(span, nil)
		return Response{Handled: true}
	}

	res, matched, err := b.dispatcher.Dispatch(ctx, msg)
	if matched {
		span.SetAttributes(attribute.String(instrumentation.SpanAttrCommand, res.Command))
	}
	instrumentation.EndSpan(span, err)

	if !matched {
		// A setup reply the controller rejected already got its failure
		// notice, so it must not also get the not-a-command hint.
		if msg.Type == auth.PromptType {
			return Response{Handled: true}
		}
		return Response{}
	}
	if err != nil {
		return Response{Handled: true, Reply: b.failureReply(res.Command, msg, err)}
	}
	return Response{Handled: true, Reply: res.Reply}
}

func (b *Bot) failureReply(cmd string, msg chat.Message, err error) string {
	logger := logging.WithCommand(b.logger, cmd).With(logging.UserHash(msg.UserID), logging.Adapter(msg.Adapter))

	switch {
	case errors.Is(err, command.ErrUnauthorized):
		return MsgNotPermitted
	case errors.Is(err, calendar.ErrProvider):
		var pe *calendar.ProviderError
		if errors.As(err, &pe) {
			logger.Warn("calendar request failed", slog.Int("status_code", pe.StatusCode), logging.Err(err))
			return MsgProviderFailed + pe.Message
		}
		return MsgProviderFailed + err.Error()
	default:
		logger.Error("command failed", logging.Err(err))
		return MsgFailed
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/chatcal/internal/chat"
	"github.com/teemow/chatcal/internal/google"
	"github.com/teemow/chatcal/internal/logging"
	"github.com/teemow/chatcal/internal/persist"
)

// PromptType tags setup prompts and the replies to them.
const PromptType = "calendarSetup"

// Messages sent to the user when a setup finishes.
const (
	MsgSetupComplete = "Calendar setup complete."
	MsgSetupFailed   = "Calendar setup failed"
)

// Exchanger is the part of the credential store the controller drives.
// *google.CredentialStore implements it.
type Exchanger interface {
	AuthCodeURL(state string) string
	ApplyExchange(ctx context.Context, code string) (google.CredentialSet, error)
}

// Session outcomes passed to the Recorder.
const (
	OutcomeStarted    = "started"
	OutcomeCompleted  = "completed"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Recorder records setup session transitions.
// *instrumentation.Metrics implements it.
type Recorder interface {
	RecordSetupSession(ctx context.Context, outcome string)
}

// Controller runs setup sessions. It is safe for concurrent use.
type Controller struct {
	creds     Exchanger
	store     persist.Store
	transport chat.Transport
	recorder  Recorder
	logger    *slog.Logger

	newID func() string
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the recorder for setup session metrics.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithIDGenerator overrides how session ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// NewController creates a controller that exchanges codes through creds,
// saves the result to store and talks to users over transport.
func NewController(creds Exchanger, store persist.Store, transport chat.Transport, opts ...Option) *Controller {
	c := &Controller{
		creds:     creds,
		store:     store,
		transport: transport,
		logger:    slog.Default(),
		newID:     uuid.NewString,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithService(c.logger, "auth")
	return c
}

// BeginSetup starts a session for userID and prompts them with the
// authorization URL on adapter. Any pending session for the user is
// superseded. It returns the URL.
func (c *Controller) BeginSetup(ctx context.Context, userID, adapter string) (string, error) {
	if userID == "" {
		return "", errors.New("user id cannot be empty")
	}

	session := newSession(c.newID(), userID, adapter, c.now())
	url := c.creds.AuthCodeURL(session.ID)

	c.mu.Lock()
	previous := c.sessions[userID]
	c.sessions[userID] = session
	c.mu.Unlock()

	logger := c.logger.With(logging.UserHash(userID), logging.Adapter(adapter), logging.Session(session.ID))

	if previous != nil && previous.Awaiting() {
		if err := previous.fire(ctx, triggerSuperseded); err != nil {
			logger.Warn("failed to supersede session", logging.Err(err))
		}
		c.record(ctx, OutcomeSuperseded)
		logger.Info("superseded pending setup session", slog.String("previous_session", previous.ID))
	}

	prompt := chat.Prompt{
		Type:        PromptType,
		MessageText: url,
		UserID:      userID,
		SessionID:   session.ID,
	}
	if err := c.transport.Prompt(ctx, adapter, prompt); err != nil {
		c.drop(session)
		return "", fmt.Errorf("failed to prompt user: %w", err)
	}

	c.record(ctx, OutcomeStarted)
	logger.Info("setup session started")
	return url, nil
}

// CompleteSetup handles the reply to a setup prompt. It returns true only
// when the code was exchanged and the new credentials were persisted. It
// returns false without side effects when msg is not a setup reply or no
// session is waiting for it, so other handlers can still process the
// message.
func (c *Controller) CompleteSetup(ctx context.Context, msg chat.Message) bool {
	if msg.Type != PromptType {
		return false
	}

	session := c.claim(msg.UserID, msg.Adapter)
	if session == nil {
		return false
	}

	logger := c.logger.With(logging.UserHash(msg.UserID), logging.Adapter(msg.Adapter), logging.Session(session.ID))

	creds, err := c.creds.ApplyExchange(ctx, strings.TrimSpace(msg.Text))
	if err == nil {
		err = persist.SaveCredentials(ctx, c.store, creds)
	}

	if err != nil {
		logger.Error("setup failed", logging.Err(err))
		if ferr := session.fire(ctx, triggerCodeRejected); ferr != nil {
			logger.Warn("failed to update session state", logging.Err(ferr))
		}
		c.record(ctx, OutcomeFailed)
		c.notify(ctx, msg, fmt.Sprintf("%s: %s", MsgSetupFailed, failureDetail(err)), logger)
		return false
	}

	if ferr := session.fire(ctx, triggerCodeAccepted); ferr != nil {
		logger.Warn("failed to update session state", logging.Err(ferr))
	}
	c.record(ctx, OutcomeCompleted)
	logger.Info("setup completed")
	c.notify(ctx, msg, MsgSetupComplete, logger)
	return true
}

// Pending returns the session awaiting a code from userID, or nil.
func (c *Controller) Pending(userID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sessions[userID]
	if s == nil || !s.Awaiting() {
		return nil
	}
	return s
}

// drop forgets session unless it has already been replaced.
// claim removes and returns the awaiting session of userID if it was started
// on adapter. At most one caller gets a given session.
func (c *Controller) claim(userID, adapter string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sessions[userID]
	if s == nil || !s.Awaiting() || s.Adapter != adapter {
		return nil
	}
	delete(c.sessions, userID)
	return s
}

func (c *Controller) drop(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[session.UserID] == session {
		delete(c.sessions, session.UserID)
	}
}

func (c *Controller) record(ctx context.Context, outcome string) {
	if c.recorder != nil {
		c.recorder.RecordSetupSession(ctx, outcome)
	}
}

func (c *Controller) notify(ctx context.Context, msg chat.Message, text string, logger *slog.Logger) {
	if err := c.transport.Send(ctx, msg.Adapter, msg.UserID, text); err != nil {
		logger.Warn("failed to notify user", logging.Err(err))
	}
}

// failureDetail is the part of err shown to the user. Provider detail is
// kept; anything else is summarized.
func failureDetail(err error) string {
	var authErr *google.AuthError
	if errors.As(err, &authErr) {
		if authErr.Description != "" {
			return authErr.Description
		}
		if authErr.Code != "" {
			return authErr.Code
		}
	}
	if errors.Is(err, google.ErrExchangeFailed) {
		return "the code was not accepted"
	}
	return "the new credentials could not be saved"
}

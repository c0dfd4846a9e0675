package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/teemow/chatcal/internal/bot"
	"github.com/teemow/chatcal/internal/chat"
)

// ErrUnknownAdapter is returned when no transport is registered for an adapter.
var ErrUnknownAdapter = errors.New("unknown adapter")

// MsgNotACommand is shown when nothing handled a message.
const MsgNotACommand = `That is not a calendar command. Try "calendar help".`

// Handler processes inbound messages. *bot.Bot implements it.
type Handler interface {
	Handle(ctx context.Context, msg chat.Message) bot.Response
}

// Router implements chat.Transport by delegating to the transport
// registered for each adapter.
type Router struct {
	mu         sync.RWMutex
	transports map[string]chat.Transport
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{transports: make(map[string]chat.Transport)}
}

// Register routes calls for adapter to t.
func (r *Router) Register(adapter string, t chat.Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports[adapter] = t
}

// Prompt implements chat.Transport.
func (r *Router) Prompt(ctx context.Context, adapter string, prompt chat.Prompt) error {
	t, err := r.lookup(adapter)
	if err != nil {
		return err
	}
	return t.Prompt(ctx, adapter, prompt)
}

// Send implements chat.Transport.
func (r *Router) Send(ctx context.Context, adapter, userID, text string) error {
	t, err := r.lookup(adapter)
	if err != nil {
		return err
	}
	return t.Send(ctx, adapter, userID, text)
}

func (r *Router) lookup(adapter string) (chat.Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transports[adapter]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, adapter)
	}
	return t, nil
}

// promptTracker remembers the type of the last prompt sent to each user.
type promptTracker struct {
	mu      sync.Mutex
	pending map[string]string
}

func (p *promptTracker) set(userID, typ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		p.pending = make(map[string]string)
	}
	p.pending[userID] = typ
}

// take returns and clears the pending prompt type for userID.
func (p *promptTracker) take(userID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	typ := p.pending[userID]
	delete(p.pending, userID)
	return typ
}

func promptText(p chat.Prompt) string {
	return fmt.Sprintf("Open this link to authorize calendar access, then send me the code you receive:\n%s", p.MessageText)
}

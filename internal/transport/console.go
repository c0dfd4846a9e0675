package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/teemow/chatcal/internal/chat"
	"github.com/teemow/chatcal/internal/logging"
)

// ConsoleAdapter is the adapter name of the console transport.
const ConsoleAdapter = "console"

// Console is a single-user terminal transport.
type Console struct {
	in     io.Reader
	out    io.Writer
	userID string
	logger *slog.Logger

	prompts promptTracker
	mu      sync.Mutex
}

// NewConsole creates a console transport reading from in and writing to
// out. Every line is sent as userID.
func NewConsole(in io.Reader, out io.Writer, userID string, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		in:     in,
		out:    out,
		userID: userID,
		logger: logging.WithService(logger, "console"),
	}
}

// Prompt implements chat.Transport.
func (c *Console) Prompt(_ context.Context, _ string, prompt chat.Prompt) error {
	c.prompts.set(prompt.UserID, prompt.Type)
	return c.writeLine(promptText(prompt))
}

// Send implements chat.Transport.
func (c *Console) Send(_ context.Context, _ string, _ string, text string) error {
	return c.writeLine(text)
}

// Run feeds lines from the input to h until the input ends or ctx is done.
func (c *Console) Run(ctx context.Context, h Handler) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			if err := c.handleLine(ctx, h, line); err != nil {
				return err
			}
		}
	}
}

func (c *Console) handleLine(ctx context.Context, h Handler, line string) error {
	text := strings.TrimSpace(line)
	if text == "" {
		return nil
	}

	msg := chat.Message{
		UserID:  c.userID,
		Adapter: ConsoleAdapter,
		Text:    text,
		Type:    c.prompts.take(c.userID),
	}

	resp := h.Handle(ctx, msg)
	switch {
	case resp.Reply != "":
		return c.writeLine(resp.Reply)
	case !resp.Handled:
		return c.writeLine(MsgNotACommand)
	}
	return nil
}

func (c *Console) writeLine(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		c.logger.Warn("failed to write to console", logging.Err(err))
		return err
	}
	return nil
}

package command

import (
	"context"
	"fmt"
	"regexp"

	"github.com/teemow/chatcal/internal/chat"
)

// Match is what a handler receives about the matched message.
type Match struct {
	// Groups are the pattern's submatches; Groups[0] is the whole match.
	Groups []string

	// Payload is the first capture group, or "" when the pattern has none.
	Payload string
}

// Handler runs a matched command and returns the reply text.
type Handler func(ctx context.Context, match Match, msg chat.Message) (string, error)

// Rule binds a pattern to a permission and a handler.
type Rule struct {
	Name       string
	Help       string
	Pattern    *regexp.Regexp
	Permission Permission
	Handler    Handler
}

// NewRule compiles pattern case-insensitively and returns the rule.
func NewRule(name, pattern string, perm Permission, help string, h Handler) (Rule, error) {
	if h == nil {
		return Rule{}, fmt.Errorf("rule %s: handler cannot be nil", name)
	}
	if perm == "" {
		return Rule{}, fmt.Errorf("rule %s: permission cannot be empty", name)
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: invalid pattern: %w", name, err)
	}

	return Rule{
		Name:       name,
		Help:       help,
		Pattern:    re,
		Permission: perm,
		Handler:    h,
	}, nil
}

// MustRule is like NewRule but panics on error. It is meant for rules
// declared in code.
func MustRule(name, pattern string, perm Permission, help string, h Handler) Rule {
	r, err := NewRule(name, pattern, perm, help, h)
	if err != nil {
		panic(err)
	}
	return r
}

// match reports whether text matches the rule and returns the match data.
func (r Rule) match(text string) (Match, bool) {
	groups := r.Pattern.FindStringSubmatch(text)
	if groups == nil {
		return Match{}, false
	}

	m := Match{Groups: groups}
	if len(groups) > 1 {
		m.Payload = groups[1]
	}
	return m, true
}

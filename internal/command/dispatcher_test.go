package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chatcal/internal/chat"
)

type recordedCall struct {
	command string
	status  string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordCommandInvocation(_ context.Context, command, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{command: command, status: status})
}

type handlerSpy struct {
	calls    int
	payloads []string
}

func (s *handlerSpy) handler(reply string) Handler {
	return func(_ context.Context, m Match, _ chat.Message) (string, error) {
		s.calls++
		s.payloads = append(s.payloads, m.Payload)
		return reply, nil
	}
}

func newCalendarRules(schedule, events *handlerSpy) []Rule {
	return []Rule{
		MustRule("schedule", `^schedule\s*(.+)`, "addEvents", "schedule <text>", schedule.handler("scheduled")),
		MustRule("events", `^(?:events|calendar list).*`, Public, "events", events.handler("listed")),
	}
}

func TestDispatch_SchedulePayload(t *testing.T) {
	schedule, events := &handlerSpy{}, &handlerSpy{}
	auth := NewGroupAuthorizer(map[string][]string{"addEvents": {"u1"}})
	d := NewDispatcher(auth, newCalendarRules(schedule, events))

	res, matched, err := d.Dispatch(context.Background(), chat.Message{UserID: "u1", Text: "schedule Lunch tomorrow at noon"})
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "schedule", res.Command)
	assert.Equal(t, "scheduled", res.Reply)
	assert.Equal(t, []string{"Lunch tomorrow at noon"}, schedule.payloads)
	assert.Zero(t, events.calls)
}

func TestDispatch_CaseInsensitive(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		command string
	}{
		{name: "upper schedule", text: "SCHEDULE dentist friday", command: "schedule"},
		{name: "mixed events", text: "Events", command: "events"},
		{name: "calendar list", text: "Calendar List please", command: "events"},
		{name: "events with suffix", text: "events this week", command: "events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, events := &handlerSpy{}, &handlerSpy{}
			auth := NewGroupAuthorizer(map[string][]string{"addEvents": {"u1"}})
			d := NewDispatcher(auth, newCalendarRules(schedule, events))

			res, matched, err := d.Dispatch(context.Background(), chat.Message{UserID: "u1", Text: tt.text})
			require.NoError(t, err)
			assert.True(t, matched)
			assert.Equal(t, tt.command, res.Command)
		})
	}
}

func TestDispatch_NoMatch(t *testing.T) {
	schedule, events := &handlerSpy{}, &handlerSpy{}
	d := NewDispatcher(nil, newCalendarRules(schedule, events))

	for _, text := range []string{"hello there", "schedule", "what events are on", ""} {
		res, matched, err := d.Dispatch(context.Background(), chat.Message{UserID: "u1", Text: text})
		require.NoError(t, err, text)
		assert.False(t, matched, text)
		assert.Empty(t, res.Command, text)
	}
	assert.Zero(t, schedule.calls)
	assert.Zero(t, events.calls)
}

func TestDispatch_UnauthorizedNeverRunsHandler(t *testing.T) {
	schedule, events := &handlerSpy{}, &handlerSpy{}
	rec := &fakeRecorder{}
	auth := NewGroupAuthorizer(map[string][]string{"addEvents": {"someone-else"}})
	d := NewDispatcher(auth, newCalendarRules(schedule, events), WithRecorder(rec))

	res, matched, err := d.Dispatch(context.Background(), chat.Message{UserID: "u2", Text: "schedule Lunch"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, matched)
	assert.Equal(t, "schedule", res.Command)
	assert.Zero(t, schedule.calls)
	assert.Equal(t, []recordedCall{{command: "schedule", status: "unauthorized"}}, rec.calls)
}

func TestDispatch_UnauthorizedStopsScan(t *testing.T) {
	restricted, fallback := &handlerSpy{}, &handlerSpy{}
	rules := []Rule{
		MustRule("restricted", `^calendar (.*)`, "admins", "", restricted.handler("restricted")),
		MustRule("fallback", `^calendar list`, Public, "", fallback.handler("fallback")),
	}
	d := NewDispatcher(NewGroupAuthorizer(nil), rules)

	_, matched, err := d.Dispatch(context.Background(), chat.Message{UserID: "u1", Text: "calendar list"})
	assert.True(t, matched)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, restricted.calls)
	assert.Zero(t, fallback.calls)
}

func TestDispatch_FirstMatchWins(t *testing.T) {
	first, second := &handlerSpy{}, &handlerSpy{}
	rules := []Rule{
		MustRule("first", `^calendar`, Public, "", first.handler("first")),
		MustRule("second", `^calendar list`, Public, "", second.handler("second")),
	}
	d := NewDispatcher(nil, rules)

	for i := 0; i < 5; i++ {
		res, matched, err := d.Dispatch(context.Background(), chat.Message{Text: "calendar list"})
		require.NoError(t, err)
		assert.True(t, matched)
		assert.Equal(t, "first", res.Reply)
	}
	assert.Equal(t, 5, first.calls)
	assert.Zero(t, second.calls)
}

func TestDispatch_PublicNeedsNoGroup(t *testing.T) {
	schedule, events := &handlerSpy{}, &handlerSpy{}
	rec := &fakeRecorder{}
	d := NewDispatcher(nil, newCalendarRules(schedule, events), WithRecorder(rec))

	res, matched, err := d.Dispatch(context.Background(), chat.Message{UserID: "anyone", Text: "events"})
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "listed", res.Reply)
	assert.Equal(t, []recordedCall{{command: "events", status: "success"}}, rec.calls)
}

func TestDispatch_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	rec := &fakeRecorder{}
	rules := []Rule{
		MustRule("fail", `^fail`, Public, "", func(context.Context, Match, chat.Message) (string, error) {
			return "", boom
		}),
	}
	d := NewDispatcher(nil, rules, WithRecorder(rec))

	res, matched, err := d.Dispatch(context.Background(), chat.Message{Text: "fail now"})
	assert.True(t, matched)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "fail", res.Command)
	assert.Empty(t, res.Reply)
	assert.Equal(t, []recordedCall{{command: "fail", status: "error"}}, rec.calls)
}

func TestDispatch_TrimsWhitespace(t *testing.T) {
	schedule, events := &handlerSpy{}, &handlerSpy{}
	d := NewDispatcher(nil, newCalendarRules(schedule, events))

	_, matched, err := d.Dispatch(context.Background(), chat.Message{Text: "   events  "})
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, 1, events.calls)
}

func TestHelp_FiltersByPermission(t *testing.T) {
	schedule, events := &handlerSpy{}, &handlerSpy{}
	auth := NewGroupAuthorizer(map[string][]string{"addEvents": {"u1"}})
	d := NewDispatcher(auth, newCalendarRules(schedule, events))

	assert.Equal(t, "schedule <text>\nevents", d.Help("u1"))
	assert.Equal(t, "events", d.Help("u2"))
}

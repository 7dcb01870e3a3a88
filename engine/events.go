package engine

import (
	"context"
	"runtime/debug"

	"scriptsync/logger"
)

// EventType represents the type of event in the engine
type EventType string

const (
	EventPull      EventType = "pull"       // review remote edits for the focused file
	EventPullAll   EventType = "pull_all"   // sweep the whole workspace
	EventPush      EventType = "push"       // upload the focused file
	EventPushAll   EventType = "push_all"   // upload every synced workspace file
	EventAccept    EventType = "accept"     // resolve one change, applying remote text
	EventReject    EventType = "reject"     // resolve one change, keeping local text
	EventAcceptAll EventType = "accept_all" // resolve every pending change, accepting
	EventRejectAll EventType = "reject_all" // resolve every pending change, rejecting
	EventFocus     EventType = "focus"      // repaint annotations for a newly focused doc
	EventEsc       EventType = "esc"        // hide annotations without resolving
)

// Event represents one queued user or editor action.
type Event struct {
	Type EventType
	Args []any
}

var eventTypes = map[string]EventType{}

func init() {
	for _, t := range []EventType{
		EventPull, EventPullAll, EventPush, EventPushAll,
		EventAccept, EventReject, EventAcceptAll, EventRejectAll,
		EventFocus, EventEsc,
	} {
		eventTypes[string(t)] = t
	}
}

// EventTypeFromString converts a string to EventType, "" when unknown.
func EventTypeFromString(s string) EventType {
	return eventTypes[s]
}

func (e *Engine) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.eventChan:
			e.handleEvent(ctx, ev)
		}
	}
}

// handleEvent is the outermost action boundary: every fallible operation in
// pull/accept/reject/render is caught here or in its handler and converted
// to a user-visible notification; nothing propagates to crash the process.
func (e *Engine) handleEvent(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic handling %s: %v\n%s", ev.Type, r, debug.Stack())
		}
	}()

	logger.Debug("event: %s", ev.Type)

	switch ev.Type {
	case EventPull:
		e.handlePull(ctx)
	case EventPullAll:
		e.handlePullAll(ctx)
	case EventPush:
		e.handlePush(ctx)
	case EventPushAll:
		e.handlePushAll(ctx)
	case EventAccept:
		e.handleResolve(ev.Args, true)
	case EventReject:
		e.handleResolve(ev.Args, false)
	case EventAcceptAll:
		e.handleResolveAll(true)
	case EventRejectAll:
		e.handleResolveAll(false)
	case EventFocus:
		e.handleFocus()
	case EventEsc:
		e.handleEsc()
	}
}

// Helpers for decoding msgpack RPC arguments; numbers arrive as assorted
// integer widths or float64 depending on the encoder.

func argString(args []any, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}

func argInt64(args []any, i int) (int64, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

package telemetry

import "context"

type multiEmitter []EventEmitter

// MultiEmitter returns an EventEmitter that fans out to every non-nil emitter.
// Returns nil when no emitters are given so callers can skip emission entirely.
func MultiEmitter(emitters ...EventEmitter) EventEmitter {
	var out multiEmitter
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Emit sends the event to every emitter and returns the first error.
func (m multiEmitter) Emit(ctx context.Context, event *AuthEvent) error {
	var firstErr error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package queue

import "context"

// Publisher emits domain events to the broker. Handlers treat publishing
// as fire-and-forget; a lost event never fails the request.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Publish(context.Context, string, string, any, string) error { return nil }
func (Noop) Close() error                                               { return nil }

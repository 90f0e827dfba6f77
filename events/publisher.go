package events

import "context"

const (
	RoutingResultDeclared = "result.declared"
	RoutingLedgerSettled  = "ledger.settled"
)

// Publisher delivers JSON encoded events. Publishing is best effort; callers
// log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

func (Noop) Close() error { return nil }

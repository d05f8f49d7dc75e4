package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmehra2102/storefront/internal/checkout/application"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
	"github.com/dmehra2102/storefront/pkg/outbox"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

const EventOrderSubmitted = "OrderSubmitted"

type Appender interface {
	Append(ctx context.Context, ev outbox.Event) (int64, error)
}

// Publisher records checkout events in the outbox; the relay ships them.
type Publisher struct {
	out    Appender
	source string
}

func NewPublisher(out Appender, source string) *Publisher {
	return &Publisher{out: out, source: source}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.OrderSubmitted) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", EventOrderSubmitted, err)
	}
	_, err = p.out.Append(ctx, outbox.Event{
		AggregateType: "order",
		AggregateID:   ev.SessionID,
		Type:          EventOrderSubmitted,
		Payload:       payload,
		Headers:       map[string]string{"source": p.source},
		Traceparent:   tracing.Traceparent(ctx),
	})
	return err
}

var _ application.OrderPublisher = (*Publisher)(nil)

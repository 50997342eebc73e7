package events

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

// Bus is the publishing side of the event bus. *EventBus satisfies it; tests
// substitute fakes.
type Bus interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

const publishTimeout = 10 * time.Second

// Publisher sends CloudEvents envelopes to the bus without letting transport
// failures surface to callers. Publish reports success as a bool and logs
// failures; the request that triggered the event never fails because the bus
// was down.
type Publisher struct {
	bus       Bus
	log       logger.Logger
	published metric.Int64Counter
}

// NewPublisher wires a fire-and-forget publisher over bus.
func NewPublisher(bus Bus, log logger.Logger) *Publisher {
	counter, err := otel.Meter("events").Int64Counter(
		"task_events_published_total",
		metric.WithDescription("Events offered to the bus, by topic and outcome"),
	)
	if err != nil {
		log.Error("events: create publish counter", "error", err)
	}
	return &Publisher{bus: bus, log: log, published: counter}
}

// Publish sends env to topic and returns whether the handoff succeeded.
// Failures are logged at ERROR and counted, never returned. The call is
// bounded by a 10 second timeout detached from the caller's deadline so an
// almost-expired request context cannot starve the publish.
func (p *Publisher) Publish(ctx context.Context, topic string, env *Envelope) bool {
	raw, err := env.Marshal()
	if err != nil {
		p.log.ErrorContext(ctx, "event publish failed: marshal",
			"topic", topic, "event_type", env.Type, "event_id", env.ID, "error", err)
		p.count(ctx, topic, false)
		return false
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := message.NewMessage(watermill.NewUUID(), raw)
	msg.Metadata.Set("event_type", env.Type)
	msg.Metadata.Set("event_id", env.ID)

	if err := p.bus.Publish(pubCtx, topic, msg); err != nil {
		p.log.ErrorContext(ctx, "event publish failed",
			"topic", topic, "event_type", env.Type, "event_id", env.ID, "error", err)
		p.count(ctx, topic, false)
		return false
	}

	p.log.DebugContext(ctx, "event published",
		"topic", topic, "event_type", env.Type, "event_id", env.ID)
	p.count(ctx, topic, true)
	return true
}

func (p *Publisher) count(ctx context.Context, topic string, success bool) {
	if p.published == nil {
		return
	}
	p.published.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.Bool("success", success),
	))
}

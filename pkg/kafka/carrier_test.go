package kafka

import (
	"context"
	"sort"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const sampleTraceparent = "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "event_type", Value: []byte("product.updated")}}}
	c := NewHeaderCarrier(&msg)

	if got := c.Get("event_type"); got != "product.updated" {
		t.Errorf("Get(event_type) = %q", got)
	}
	if got := c.Get("traceparent"); got != "" {
		t.Errorf("Get(traceparent) on fresh message = %q, want empty", got)
	}

	c.Set("traceparent", sampleTraceparent)
	c.Set("event_type", "product.deleted")

	if len(msg.Headers) != 2 {
		t.Fatalf("headers = %d, want 2 (Set must overwrite, not append)", len(msg.Headers))
	}
	if got := c.Get("event_type"); got != "product.deleted" {
		t.Errorf("Get(event_type) after Set = %q", got)
	}

	keys := c.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "event_type" || keys[1] != "traceparent" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestHeaderCarrier_Empty(t *testing.T) {
	var msg kafka.Message
	c := NewHeaderCarrier(&msg)

	if keys := c.Keys(); len(keys) != 0 {
		t.Errorf("Keys() = %v, want none", keys)
	}
	if c.Get("anything") != "" {
		t.Error("Get on empty headers should be empty")
	}
}

func TestTraceContextSurvivesConsumeAndRepublish(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	incoming := kafka.Message{Headers: []kafka.Header{
		{Key: "traceparent", Value: []byte(sampleTraceparent)},
		{Key: "baggage", Value: []byte("tenant=storefront")},
	}}
	ctx := extractTrace(context.Background(), &incoming)

	var outgoing kafka.Message
	injectTrace(ctx, &outgoing)

	out := NewHeaderCarrier(&outgoing)
	if got := out.Get("traceparent"); got != sampleTraceparent {
		t.Errorf("traceparent = %q, want %q", got, sampleTraceparent)
	}
	if got := out.Get("baggage"); got != "tenant=storefront" {
		t.Errorf("baggage = %q", got)
	}
}

package eventbus

import (
	"context"
	"testing"
)

type ping struct{ n int }
type pong struct{}

func TestPublishReachesSubscribersByType(t *testing.T) {
	Use(New())
	defer Use(nil)

	var pings, pongs int
	unsub := Subscribe(func(_ context.Context, e ping) { pings += e.n })
	defer unsub()
	defer Subscribe(func(context.Context, pong) { pongs++ })()

	Publish(context.Background(), ping{n: 2})
	Publish(context.Background(), ping{n: 3})
	Publish(context.Background(), pong{})

	if pings != 5 || pongs != 1 {
		t.Fatalf("pings=%d pongs=%d", pings, pongs)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got int
	unsub := Subscribe(func(context.Context, ping) { got++ })
	Publish(context.Background(), ping{})
	unsub()
	Publish(context.Background(), ping{})

	if got != 1 {
		t.Fatalf("got %d deliveries, want 1", got)
	}
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	Use(nil)
	Publish(context.Background(), ping{}) // must not panic
	if unsub := Subscribe(func(context.Context, ping) {}); unsub == nil {
		t.Fatal("Subscribe must return a usable unsubscribe")
	}
}

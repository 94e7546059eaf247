package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nuohe369/redisqueue/pkg/json"
	"github.com/nuohe369/redisqueue/pkg/redis"
)

func newTestConnection(t *testing.T, addr string, opts ...func(*Options)) *Connection {
	t.Helper()
	base := []func(*Options){
		func(o *Options) {
			o.Topology = redis.Topology{Addr: addr}
			o.Breaker.Disabled = true
		},
	}
	o, err := NewOptions(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewOptions: %v", err)
	}
	conn, err := Open(context.Background(), o)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestRoundTripImmediate covers an immediate (delay=0) publish/consume/ack round trip.
func TestRoundTripImmediate(t *testing.T) {
	srv := miniredis.RunT(t)
	conn := newTestConnection(t, srv.Addr(), func(o *Options) { o.Stream = "t1"; o.Group = "g"; o.Consumer = "c" })
	ctx := context.Background()

	id, err := conn.Add(ctx, "hello", map[string]string{"type": "T"}, 0)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	msg, err := conn.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if msg == nil {
		t.Fatal("expected a message")
	}
	fields := msg.Data[msg.ID]
	env, err := decodeEnvelopeField(fields["message"])
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Body != "hello" || env.Headers["type"] != "T" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	if err := conn.Ack(ctx, msg.ID); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	again, err := conn.Get(ctx)
	if err != nil {
		t.Fatalf("Get after ack: %v", err)
	}
	if again != nil {
		t.Fatalf("expected nil after ack, got %+v", again)
	}
}

// TestDelayedDelivery covers a delayed publish that only becomes visible once its delay elapses.
func TestDelayedDelivery(t *testing.T) {
	srv := miniredis.RunT(t)
	conn := newTestConnection(t, srv.Addr(), func(o *Options) { o.Stream = "t2"; o.Group = "g"; o.Consumer = "c" })
	ctx := context.Background()

	if _, err := conn.Add(ctx, "later", nil, 80); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if msg, err := conn.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	} else if msg != nil {
		t.Fatalf("expected nil before delay elapses, got %+v", msg)
	}

	time.Sleep(120 * time.Millisecond)

	msg, err := conn.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if msg == nil {
		t.Fatal("expected message after delay elapsed")
	}
}

// TestPendingThenNewCursor covers the pending-cursor-then-new-cursor flip on Get.
func TestPendingThenNewCursor(t *testing.T) {
	srv := miniredis.RunT(t)
	conn := newTestConnection(t, srv.Addr(), func(o *Options) { o.Stream = "t3"; o.Group = "g"; o.Consumer = "c" })
	ctx := context.Background()

	if err := conn.Setup(ctx); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !conn.couldHavePendingMessages {
		t.Fatal("expected couldHavePendingMessages to start true")
	}

	if _, err := conn.Add(ctx, "x", nil, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}

	msg, err := conn.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if msg == nil {
		t.Fatal("expected a message via the flip from pending to new cursor")
	}
	if conn.couldHavePendingMessages {
		t.Fatal("expected couldHavePendingMessages to have flipped false")
	}
}

// TestSetupIdempotent covers that calling Setup twice is harmless.
func TestSetupIdempotent(t *testing.T) {
	srv := miniredis.RunT(t)
	conn := newTestConnection(t, srv.Addr(), func(o *Options) { o.Stream = "t4"; o.Group = "g" })
	ctx := context.Background()

	if err := conn.Setup(ctx); err != nil {
		t.Fatalf("first Setup: %v", err)
	}
	if err := conn.Setup(ctx); err != nil {
		t.Fatalf("second Setup: %v", err)
	}
}

// TestMultiGroupSafety covers that Setup refuses delete-after-* once a second consumer group exists on the stream.
func TestMultiGroupSafety(t *testing.T) {
	srv := miniredis.RunT(t)
	conn := newTestConnection(t, srv.Addr(), func(o *Options) {
		o.Stream = "t5"
		o.Group = "g1"
		o.DeleteAfterAck = true
	})
	ctx := context.Background()
	if err := conn.Setup(ctx); err != nil {
		t.Fatalf("Setup g1: %v", err)
	}

	other := newTestConnection(t, srv.Addr(), func(o *Options) {
		o.Stream = "t5"
		o.Group = "g2"
		o.AutoSetup = false
		o.DeleteAfterAck = false
		o.DeleteAfterReject = false
	})
	if err := other.Setup(ctx); err != nil {
		t.Fatalf("Setup g2: %v", err)
	}

	conn.autoSetup = true
	if err := conn.Setup(ctx); err == nil || !IsKind(err, KindLogic) {
		t.Fatalf("expected LogicError re-running Setup with two groups, got %v", err)
	}
}

// TestApproximateTrim covers that a configured stream_max_entries keeps the stream roughly bounded.
func TestApproximateTrim(t *testing.T) {
	srv := miniredis.RunT(t)
	conn := newTestConnection(t, srv.Addr(), func(o *Options) {
		o.Stream = "t6"
		o.Group = "g"
		o.StreamMaxEntries = 10
	})
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		if _, err := conn.Add(ctx, fmt.Sprintf("x%d", i), nil, 0); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}

	rc := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	defer rc.Close()
	n, err := rc.XLen(ctx, "t6").Result()
	if err != nil {
		t.Fatalf("XLen: %v", err)
	}
	if n >= 100 {
		t.Fatalf("XLEN = %d, want < 100 with stream_max_entries=10", n)
	}
}

// TestReclaimAfterRedeliverTimeout covers that an abandoned pending
// message is claimed by another consumer after its redeliver timeout.
func TestReclaimAfterRedeliverTimeout(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	c1 := newTestConnection(t, srv.Addr(), func(o *Options) {
		o.Stream = "t7"
		o.Group = "g"
		o.Consumer = "c1"
		o.RedeliverTimeout = 50 * time.Millisecond
		o.ClaimInterval = 0
	})
	if _, err := c1.Add(ctx, "abandoned", nil, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	msg1, err := c1.Get(ctx)
	if err != nil {
		t.Fatalf("c1.Get: %v", err)
	}
	if msg1 == nil {
		t.Fatal("expected c1 to receive the message")
	}

	time.Sleep(80 * time.Millisecond)

	c2 := newTestConnection(t, srv.Addr(), func(o *Options) {
		o.Stream = "t7"
		o.Group = "g"
		o.Consumer = "c2"
		o.RedeliverTimeout = 50 * time.Millisecond
		o.ClaimInterval = 0
		o.AutoSetup = false
	})
	// A brand-new consumer's very first Get never reclaims (its flag
	// starts true); simulate c2 being past its first empty poll so this
	// Get is reclaim-eligible.
	c2.couldHavePendingMessages = false

	msg2, err := c2.Get(ctx)
	if err != nil {
		t.Fatalf("c2.Get: %v", err)
	}
	if msg2 == nil {
		t.Fatal("expected c2 to reclaim the abandoned message")
	}
	if msg2.ID != msg1.ID {
		t.Fatalf("expected the same message id, got %q and %q", msg1.ID, msg2.ID)
	}
}

func decodeEnvelopeField(raw string) (Envelope, error) {
	var env Envelope
	err := json.UnmarshalString(raw, &env)
	return env, err
}

package queue

import (
	"testing"

	"github.com/nuohe369/redisqueue/pkg/redis"
)

func TestNewOptionsDefaults(t *testing.T) {
	opts, err := NewOptions(func(o *Options) {
		o.Topology.Addr = "127.0.0.1:6379"
	})
	if err != nil {
		t.Fatalf("NewOptions: %v", err)
	}
	if opts.Stream != DefaultStream || opts.Group != DefaultGroup || opts.Consumer != DefaultConsumer {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if !opts.AutoSetup || !opts.DeleteAfterAck || !opts.DeleteAfterReject {
		t.Fatalf("unexpected boolean defaults: %+v", opts)
	}
	if opts.RedeliverTimeout != DefaultRedeliverTimeout || opts.ClaimInterval != DefaultClaimInterval {
		t.Fatalf("unexpected timing defaults: %+v", opts)
	}
}

func TestNewOptionsRejectsEmptyStream(t *testing.T) {
	_, err := NewOptions(func(o *Options) {
		o.Topology.Addr = "127.0.0.1:6379"
		o.Stream = ""
	})
	if !IsKind(err, KindConfig) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestNewOptionsRejectsEmptyHostList(t *testing.T) {
	_, err := NewOptions()
	if !IsKind(err, KindConfig) {
		t.Fatalf("expected ConfigError for empty host list, got %v", err)
	}
}

func TestNewOptionsClusterRequiresAddrs(t *testing.T) {
	_, err := NewOptions(func(o *Options) {
		o.Topology.Mode = redis.ModeCluster
	})
	if !IsKind(err, KindConfig) {
		t.Fatalf("expected ConfigError for empty cluster addrs, got %v", err)
	}
}

func TestDelayKey(t *testing.T) {
	opts, err := NewOptions(func(o *Options) {
		o.Topology.Addr = "127.0.0.1:6379"
		o.Stream = "orders"
	})
	if err != nil {
		t.Fatalf("NewOptions: %v", err)
	}
	if got, want := opts.delayKey(), "orders__queue"; got != want {
		t.Fatalf("delayKey = %q, want %q", got, want)
	}
}

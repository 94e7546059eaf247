package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// TestNewUniversalClientStandalone verifies the standalone constructor
// connects against a real (miniredis) server.
// TestNewUniversalClientStandalone 验证单机构造函数能连接真实（miniredis）服务。
func TestNewUniversalClientStandalone(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewUniversalClient(context.Background(), Topology{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("NewUniversalClient failed: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, err := client.Get(context.Background(), "k").Result(); err != nil || got != "v" {
		t.Fatalf("Get = %q, %v, want v, nil", got, err)
	}
}

// TestNewUniversalClientClusterRequiresAddrs verifies cluster mode
// fails fast without any node addresses instead of dialing nothing.
// TestNewUniversalClientClusterRequiresAddrs 验证集群模式在没有节点地址时立即失败，
// 而不是去连接一个空地址。
func TestNewUniversalClientClusterRequiresAddrs(t *testing.T) {
	_, err := NewUniversalClient(context.Background(), Topology{Mode: ModeCluster})
	if err == nil {
		t.Fatal("expected error for empty cluster address list")
	}
}

// TestNewUniversalClientSentinelRequiresMaster verifies sentinel mode
// validates MasterName before attempting to dial.
// TestNewUniversalClientSentinelRequiresMaster 验证哨兵模式在拨号前校验 MasterName。
func TestNewUniversalClientSentinelRequiresMaster(t *testing.T) {
	_, err := NewUniversalClient(context.Background(), Topology{
		Mode:          ModeSentinel,
		SentinelAddrs: "127.0.0.1:26379",
	})
	if err == nil {
		t.Fatal("expected error for missing master name")
	}
}

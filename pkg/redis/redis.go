// Package redis builds a go-redis UniversalClient for one of three
// topologies (standalone, cluster, sentinel) from a single Topology
// value, with the connection-pool and retry tuning the rest of the
// stack expects.
// Package redis 根据单一 Topology 配置构建 go-redis 的 UniversalClient，
// 支持单机、集群、哨兵三种拓扑，并应用统一的连接池与重试参数。
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nuohe369/redisqueue/pkg/logger"
)

var log = logger.NewSystem("redis")

// Mode selects which go-redis client constructor Topology builds.
// Mode 选择 Topology 构建哪种 go-redis 客户端。
type Mode string

const (
	ModeStandalone Mode = ""
	ModeCluster    Mode = "cluster"
	ModeSentinel   Mode = "sentinel"
)

// Topology describes how to reach a Redis deployment.
// Topology 描述如何连接一个 Redis 部署。
type Topology struct {
	Mode Mode `toml:"mode"`

	// Standalone | 单机模式
	Addr string `toml:"addr"`

	// Cluster: comma-separated node list | 集群：逗号分隔的节点列表
	ClusterAddrs string `toml:"cluster_addrs"`

	// Sentinel | 哨兵模式
	SentinelAddrs      string        `toml:"sentinel_addrs"` // comma-separated
	MasterName         string        `toml:"master_name"`
	SentinelRetryLimit int           `toml:"sentinel_retry_limit"` // default 20
	SentinelRetryWait  time.Duration `toml:"sentinel_retry_wait"`  // default 1s

	Username string        `toml:"username"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	Timeout  time.Duration `toml:"timeout"`      // total operation timeout, 0 = client default
	ReadTimeout time.Duration `toml:"read_timeout"` // 0 = client default
}

func splitAddrs(s string) []string {
	parts := strings.Split(s, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

const (
	poolSize        = 100
	minIdleConns    = 10
	maxIdleConns    = 50
	connMaxIdleTime = 10 * time.Minute
	connMaxLifetime = time.Hour
	poolTimeout     = 4 * time.Second
	maxRetries      = 3
	minRetryBackoff = 8 * time.Millisecond
	maxRetryBackoff = 512 * time.Millisecond
)

// NewUniversalClient connects according to Topology.Mode and verifies
// the connection with a Ping before returning.
// NewUniversalClient 根据 Topology.Mode 建立连接，并在返回前用 Ping 验证连通性。
func NewUniversalClient(ctx context.Context, t Topology) (redis.UniversalClient, error) {
	switch t.Mode {
	case ModeCluster:
		return newCluster(ctx, t)
	case ModeSentinel:
		return newSentinel(ctx, t)
	default:
		return newStandalone(ctx, t)
	}
}

func newStandalone(ctx context.Context, t Topology) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            t.Addr,
		Username:        t.Username,
		Password:        t.Password,
		DB:              t.DB,
		DialTimeout:     t.Timeout,
		ReadTimeout:     t.ReadTimeout,
		PoolSize:        poolSize,
		MinIdleConns:    minIdleConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
		PoolTimeout:     poolTimeout,
		MaxRetries:      maxRetries,
		MinRetryBackoff: minRetryBackoff,
		MaxRetryBackoff: maxRetryBackoff,
	})
	if err := ping(ctx, client, t.Timeout); err != nil {
		return nil, err
	}
	log.Info("standalone client connected: %s", t.Addr)
	return client, nil
}

func newCluster(ctx context.Context, t Topology) (redis.UniversalClient, error) {
	addrs := splitAddrs(t.ClusterAddrs)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis: cluster mode requires at least one address")
	}
	client := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:           addrs,
		Username:        t.Username,
		Password:        t.Password,
		DialTimeout:     t.Timeout,
		ReadTimeout:     t.ReadTimeout,
		PoolSize:        poolSize,
		MinIdleConns:    minIdleConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
		PoolTimeout:     poolTimeout,
		MaxRetries:      maxRetries,
		MinRetryBackoff: minRetryBackoff,
		MaxRetryBackoff: maxRetryBackoff,
	})
	if err := ping(ctx, client, t.Timeout); err != nil {
		return nil, err
	}
	log.Info("cluster client connected, nodes: %v", addrs)
	return client, nil
}

func newSentinel(ctx context.Context, t Topology) (redis.UniversalClient, error) {
	addrs := splitAddrs(t.SentinelAddrs)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis: sentinel mode requires at least one sentinel address")
	}
	if t.MasterName == "" {
		return nil, fmt.Errorf("redis: sentinel mode requires a master name")
	}
	retryLimit := t.SentinelRetryLimit
	if retryLimit <= 0 {
		retryLimit = 20
	}
	retryWait := t.SentinelRetryWait
	if retryWait <= 0 {
		retryWait = time.Second
	}
	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       t.MasterName,
		SentinelAddrs:    addrs,
		Username:         t.Username,
		Password:         t.Password,
		DB:               t.DB,
		DialTimeout:      t.Timeout,
		ReadTimeout:      t.ReadTimeout,
		PoolSize:         poolSize,
		MinIdleConns:     minIdleConns,
		MaxIdleConns:     maxIdleConns,
		ConnMaxIdleTime:  connMaxIdleTime,
		ConnMaxLifetime:  connMaxLifetime,
		PoolTimeout:      poolTimeout,
		// Commands are retried up to retryLimit times, with an exponential
		// backoff between attempts that is capped at retryWait.
		MaxRetries:      retryLimit,
		MaxRetryBackoff: retryWait,
	})
	if err := ping(ctx, client, t.Timeout); err != nil {
		return nil, err
	}
	log.Info("sentinel client connected, master=%s sentinels=%v", t.MasterName, addrs)
	return client, nil
}

func ping(ctx context.Context, client redis.UniversalClient, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis: connection failed: %w", err)
	}
	return nil
}

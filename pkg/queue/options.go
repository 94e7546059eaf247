package queue

import (
	"time"

	"github.com/nuohe369/redisqueue/pkg/redis"
)

// Options is the validated configuration for a Connection. Zero values
// are never used directly; construct via NewOptions or FromDSN so
// defaults and validation run.
// Options 是 Connection 的已校验配置。零值不会被直接使用；请通过
// NewOptions 或 FromDSN 构造，以便应用默认值和校验规则。
type Options struct {
	Stream string
	Group  string
	Consumer string

	AutoSetup         bool
	DeleteAfterAck    bool
	DeleteAfterReject bool
	StreamMaxEntries  int64

	// RedeliverTimeout is how long a pending entry must sit idle before
	// another consumer may claim it; the DSN gives it in seconds.
	// RedeliverTimeout 是待处理条目可被其他消费者认领前的最短空闲时间；DSN 中以秒表示。
	RedeliverTimeout time.Duration
	// ClaimInterval is the minimum time between reclaim cycles; the DSN
	// gives it in milliseconds.
	// ClaimInterval 是两轮 reclaim 之间的最短间隔；DSN 中以毫秒表示。
	ClaimInterval time.Duration

	// Timeout and ReadTimeout are total-operation / per-read timeouts,
	// both expressed in seconds on the wire (DSN), stored as durations.
	// Timeout 与 ReadTimeout 为总操作/单次读取超时，DSN 上以秒表示，内部存为 duration。
	Timeout     time.Duration
	ReadTimeout time.Duration

	// Topology selects standalone/cluster/sentinel and carries
	// connection parameters.
	// Topology 选择单机/集群/哨兵拓扑并携带连接参数。
	Topology redis.Topology

	SentinelRetryLimit int
	SentinelRetryWait  time.Duration

	// Breaker configures the circuit breaker wrapping every Redis call
	// issued by the client adapter. A zero value uses a permissive
	// default (see pkg/breaker.DefaultConfig).
	// Breaker 配置包裹客户端适配器每次 Redis 调用的熔断器。零值使用宽松的
	// 默认配置（见 pkg/breaker.DefaultConfig）。
	Breaker BreakerOptions
}

// BreakerOptions is the subset of pkg/breaker.Config a Connection
// exposes; kept here rather than importing pkg/breaker's Config type
// directly so pkg/queue's public API has no third-party type leaking
// through Options.
// BreakerOptions 是 pkg/breaker.Config 暴露给 Connection 的子集；没有直接
// 引用 pkg/breaker.Config 类型，是为了不让第三方类型泄漏进 pkg/queue 的公开
// API。
type BreakerOptions struct {
	Disabled     bool
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Default option values.
// 默认配置值。
const (
	DefaultStream   = "messages"
	DefaultGroup    = "symfony"
	DefaultConsumer = "consumer"

	DefaultAutoSetup         = true
	DefaultDeleteAfterAck    = true
	DefaultDeleteAfterReject = true
	DefaultStreamMaxEntries  = int64(0)

	DefaultRedeliverTimeout = 3600 * time.Second
	DefaultClaimInterval    = 60000 * time.Millisecond

	DefaultSentinelRetryLimit = 20
	DefaultSentinelRetryWait  = 1000 * time.Millisecond
)

// NewOptions returns Options populated with the package's default
// values, then applies each opt.
// NewOptions 返回填充了默认值的 Options，再依次应用每个 opt。
func NewOptions(opts ...func(*Options)) (Options, error) {
	o := Options{
		Stream:             DefaultStream,
		Group:              DefaultGroup,
		Consumer:           DefaultConsumer,
		AutoSetup:          DefaultAutoSetup,
		DeleteAfterAck:     DefaultDeleteAfterAck,
		DeleteAfterReject:  DefaultDeleteAfterReject,
		StreamMaxEntries:   DefaultStreamMaxEntries,
		RedeliverTimeout:   DefaultRedeliverTimeout,
		ClaimInterval:      DefaultClaimInterval,
		SentinelRetryLimit: DefaultSentinelRetryLimit,
		SentinelRetryWait:  DefaultSentinelRetryWait,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

func (o Options) validate() error {
	if o.Stream == "" {
		return configError("stream name must not be empty")
	}
	if o.Group == "" {
		return configError("group name must not be empty")
	}
	if o.Consumer == "" {
		return configError("consumer name must not be empty")
	}
	switch o.Topology.Mode {
	case redis.ModeStandalone:
		if o.Topology.Addr == "" {
			return configError("host list must not be empty")
		}
	case redis.ModeCluster:
		if len(splitDSNList(o.Topology.ClusterAddrs)) == 0 {
			return configError("host list must not be empty")
		}
	case redis.ModeSentinel:
		if len(splitDSNList(o.Topology.SentinelAddrs)) == 0 {
			return configError("host list must not be empty")
		}
		if o.Topology.MasterName == "" {
			return configError("sentinel_master must not be empty")
		}
	}
	return nil
}

// delayKey is the sorted-set key backing the delay queue for this
// stream: <stream>__queue.
// delayKey 是该 stream 对应延迟队列有序集合的键：<stream>__queue。
func (o Options) delayKey() string {
	return o.Stream + "__queue"
}

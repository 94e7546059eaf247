package queue

import (
	"context"
	"time"
)

// Connection is the state machine coordinating the stream, the delay
// queue, the consumer-group cursor, pending-message reclamation, and
// the per-message lifecycle. It is the core type of this package. A
// Connection is built for cooperative use by one logical consumer; it
// is not itself safe for concurrent use.
//
// Connection 是协调 stream、延迟队列、消费组游标、待处理消息认领以及
// 单条消息生命周期的状态机，是本包的核心类型。一个 Connection 面向单一逻辑
// 消费者协作式使用；它本身不保证并发安全。
type Connection struct {
	opts   Options
	client *client

	// autoSetup mirrors Options.AutoSetup but is runtime state: once
	// Setup runs (explicitly or via an Add/Get auto-setup call), it
	// flips false so later calls skip the round trip.
	// autoSetup 镜像 Options.AutoSetup 但属于运行期状态：一旦 Setup
	// 执行过（无论是显式调用还是 Add/Get 的自动 setup），它会置为
	// false，后续调用就跳过这次往返。
	autoSetup bool

	// couldHavePendingMessages selects the XREADGROUP cursor: true
	// means "0" (rescan this consumer's PEL), false means ">" (new
	// entries only).
	// couldHavePendingMessages 决定 XREADGROUP 的游标：true 对应 "0"
	// （重新扫描本消费者的 PEL），false 对应 ">"（仅新条目）。
	couldHavePendingMessages bool

	// nextClaim is the earliest time the reclaimer is allowed to run
	// again; advances only at the end of a reclaim cycle, except the
	// early-return case documented in reclaim.go.
	// nextClaim 是允许再次运行 reclaimer 的最早时间；仅在一轮 reclaim
	// 结束时前进，reclaim.go 中记录的提前返回场景除外。
	nextClaim time.Time

	// unlinkWorks tracks, per instance rather than as process-global
	// state, whether UNLINK is available on this server so it stays
	// observable and testable.
	// unlinkWorks 按实例而非进程级全局状态记录本服务器是否支持 UNLINK，
	// 便于观察和测试。
	unlinkWorks bool
}

// Open builds a Connection from already-validated Options, dialing the
// Redis topology it names.
// Open 根据已校验的 Options 构建 Connection，按其描述的拓扑建立连接。
func Open(ctx context.Context, opts Options) (*Connection, error) {
	name := "queue:" + opts.Stream + ":" + opts.Group
	cl, err := newClient(ctx, opts.Topology, name, opts.Breaker)
	if err != nil {
		return nil, err
	}
	log.Info("connection opened: stream=%s group=%s consumer=%s", opts.Stream, opts.Group, opts.Consumer)
	return &Connection{
		opts:                     opts,
		client:                   cl,
		autoSetup:                opts.AutoSetup,
		couldHavePendingMessages: true,
		unlinkWorks:              true,
	}, nil
}

// OpenDSN parses dsn and opens a Connection from the result.
// OpenDSN 解析 dsn 并据此打开一个 Connection。
func OpenDSN(ctx context.Context, dsn string) (*Connection, error) {
	opts, err := FromDSN(dsn)
	if err != nil {
		return nil, err
	}
	return Open(ctx, opts)
}

// Close releases the underlying Redis connection.
// Close 释放底层 Redis 连接。
func (c *Connection) Close() error {
	return c.client.close()
}

// ensureSetup runs Setup the first time autoSetup is still true; both
// Add and Get call it before doing anything else.
// ensureSetup 在 autoSetup 仍为 true 时首次运行 Setup；Add 与 Get 在做
// 其他任何事之前都会先调用它。
func (c *Connection) ensureSetup(ctx context.Context) error {
	if !c.autoSetup {
		return nil
	}
	return c.Setup(ctx)
}

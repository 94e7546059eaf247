package queue

import (
	"context"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nuohe369/redisqueue/pkg/breaker"
	"github.com/nuohe369/redisqueue/pkg/logger"
	"github.com/nuohe369/redisqueue/pkg/redis"
)

var log = logger.NewSystem("queue")

// client is the handle to a Redis-compatible server: it issues commands
// and surfaces errors without exposing the underlying go-redis client to
// the rest of the package. Each command gets its own small typed method
// rather than a single reflective "exec(cmd, args...)" entry point.
//
// client 是 Redis 兼容服务器的句柄：它发出命令并暴露错误，而不向包的其余
// 部分暴露底层的 go-redis 客户端。每个命令都有自己的有类型方法。
type client struct {
	raw     redis.Topology
	conn    goredis.UniversalClient
	breaker *breaker.CircuitBreaker
}

func newClient(ctx context.Context, topo redis.Topology, name string, bo BreakerOptions) (*client, error) {
	conn, err := redis.NewUniversalClient(ctx, topo)
	if err != nil {
		return nil, transportError(err, "failed to connect to redis")
	}

	c := &client{raw: topo, conn: conn}
	if !bo.Disabled {
		cfg := breaker.DefaultConfig()
		if bo.MaxRequests > 0 {
			cfg.MaxRequests = bo.MaxRequests
		}
		if bo.Interval > 0 {
			cfg.Interval = bo.Interval
		}
		if bo.Timeout > 0 {
			cfg.Timeout = bo.Timeout
		}
		if bo.FailureRatio > 0 {
			cfg.FailureRatio = bo.FailureRatio
		}
		if bo.MinRequests > 0 {
			cfg.MinRequests = bo.MinRequests
		}
		breaker.GetManager().SetConfig(cfg)
		c.breaker = breaker.GetBreaker(name)
	}
	return c, nil
}

// run executes fn under ctx, bounding it by the configured total
// operation timeout (Topology.Timeout) and routing it through the
// circuit breaker when one is configured.
// run 在 ctx 下执行 fn，受配置的总操作超时（Topology.Timeout）限制，若
// 配置了熔断器则通过熔断器路由。
func (c *client) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.raw.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.raw.Timeout)
		defer cancel()
	}
	if c.breaker == nil {
		return fn(ctx)
	}
	return c.breaker.Execute(func() error { return fn(ctx) })
}

func (c *client) close() error {
	return c.conn.Close()
}

// xadd appends member to the stream under field "message", with an
// approximate MAXLEN trim when maxLen > 0.
// xadd 将 member 以 "message" 字段追加到 stream，maxLen > 0 时采用近似
// MAXLEN 裁剪。
func (c *client) xadd(ctx context.Context, stream string, maxLen int64, member string) (string, error) {
	var id string
	err := c.run(ctx, func(ctx context.Context) error {
		args := &goredis.XAddArgs{
			Stream: stream,
			ID:     "*",
			Values: map[string]interface{}{"message": member},
		}
		if maxLen > 0 {
			args.MaxLen = maxLen
			args.Approx = true
		}
		var err error
		id, err = c.conn.XAdd(ctx, args).Result()
		return err
	})
	if err != nil {
		return "", transportError(err, "failed to append message to stream %q", stream)
	}
	return id, nil
}

// zaddNX adds member with the given score (a lexicographic string
// encoding, parsed to the float64 ZADD natively stores) only if member
// is not already present, reporting whether it was added.
// zaddNX 仅当 member 尚不存在时，以给定分数（字典序字符串编码，解析为
// ZADD 原生存储的 float64）添加该成员，返回是否添加成功。
func (c *client) zaddNX(ctx context.Context, key, score, member string) (bool, error) {
	f, perr := strconv.ParseFloat(score, 64)
	if perr != nil {
		return false, transportError(perr, "invalid delay score %q", score)
	}
	var n int64
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.conn.ZAddNX(ctx, key, goredis.Z{Score: f, Member: member}).Result()
		return err
	})
	if err != nil {
		return false, transportError(err, "failed to add delayed member to %q", key)
	}
	return n > 0, nil
}

// zpopmin pops the lowest-scoring member of key, returning ok=false if
// the set was empty. The score is rendered back into the canonical
// "sec"+"ms3" digit string so callers can apply scoreDue's
// (length, lex) comparison.
// zpopmin 弹出 key 中得分最低的成员，若集合为空则 ok=false。分数被还原为
// 标准的 "sec"+"ms3" 数字字符串，以便调用方应用 scoreDue 的 (长度, 字典序)
// 比较。
func (c *client) zpopmin(ctx context.Context, key string) (member, score string, ok bool, err error) {
	var zs []goredis.Z
	rerr := c.run(ctx, func(ctx context.Context) error {
		var err error
		zs, err = c.conn.ZPopMin(ctx, key, 1).Result()
		return err
	})
	if rerr != nil {
		return "", "", false, transportError(rerr, "failed to pop delayed member from %q", key)
	}
	if len(zs) == 0 {
		return "", "", false, nil
	}
	member, _ = zs[0].Member.(string)
	score = strconv.FormatFloat(zs[0].Score, 'f', -1, 64)
	return member, score, true, nil
}

// zcount counts members of key scored between "0" and max inclusive.
// zcount 统计 key 中得分介于 "0" 与 max 之间（含）的成员数量。
func (c *client) zcount(ctx context.Context, key, max string) (int64, error) {
	var n int64
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.conn.ZCount(ctx, key, "0", max).Result()
		return err
	})
	if err != nil {
		return 0, transportError(err, "failed to count delayed members in %q", key)
	}
	return n, nil
}

func (c *client) xdel(ctx context.Context, stream, id string) (int64, error) {
	var n int64
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.conn.XDel(ctx, stream, id).Result()
		return err
	})
	if err != nil {
		return 0, transportError(err, "failed to delete message %q from stream %q", id, stream)
	}
	return n, nil
}

func (c *client) del(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.conn.Del(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return 0, transportError(err, "failed to delete keys %v", keys)
	}
	return n, nil
}

func (c *client) unlink(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.conn.Unlink(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return 0, transportError(err, "failed to unlink keys %v", keys)
	}
	return n, nil
}

func (c *client) xrangeN(ctx context.Context, stream, start, stop string, count int64) ([]goredis.XMessage, error) {
	var msgs []goredis.XMessage
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		msgs, err = c.conn.XRangeN(ctx, stream, start, stop, count).Result()
		return err
	})
	if err != nil {
		return nil, transportError(err, "failed to range stream %q", stream)
	}
	return msgs, nil
}

func (c *client) xack(ctx context.Context, stream, group, id string) (int64, error) {
	var n int64
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.conn.XAck(ctx, stream, group, id).Result()
		return err
	})
	if err != nil {
		return 0, transportError(err, "failed to ack message %q", id)
	}
	return n, nil
}

// xpendingOldest inspects a single oldest pending entry for group on
// stream, returning nil (not an error) when the PEL is empty.
// xpendingOldest 检查 stream 上 group 的单个最旧待处理条目，PEL 为空时
// 返回 nil（非错误）。
func (c *client) xpendingOldest(ctx context.Context, stream, group string) (*goredis.XPendingExt, error) {
	var entries []goredis.XPendingExt
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		entries, err = c.conn.XPendingExt(ctx, &goredis.XPendingExtArgs{
			Stream: stream,
			Group:  group,
			Start:  "-",
			End:    "+",
			Count:  1,
		}).Result()
		return err
	})
	if err != nil {
		return nil, transportError(err, "failed to inspect pending entries on %q/%q", stream, group)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// xclaimJustID transfers ownership of ids to consumer if they have
// been idle at least minIdle, returning the ids actually claimed.
// xclaimJustID 将空闲时间不少于 minIdle 的 ids 转移给 consumer，返回实际
// 被认领的 ids。
func (c *client) xclaimJustID(ctx context.Context, stream, group, consumer string, minIdle time.Duration, ids []string) ([]string, error) {
	var claimed []string
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		claimed, err = c.conn.XClaimJustID(ctx, &goredis.XClaimArgs{
			Stream:   stream,
			Group:    group,
			Consumer: consumer,
			MinIdle:  minIdle,
			Messages: ids,
		}).Result()
		return err
	})
	if err != nil {
		return nil, transportError(err, "failed to claim messages on %q/%q", stream, group)
	}
	return claimed, nil
}

// xgroupCreateMkStream creates group on stream (creating the stream
// if absent), starting the group's cursor at start. BUSYGROUP errors
// are returned unwrapped so the caller can detect and absorb them.
// xgroupCreateMkStream 在 stream 上创建 group（stream 不存在则一并创建），
// 游标起始位置为 start。BUSYGROUP 错误原样返回，供调用方识别并吸收。
func (c *client) xgroupCreateMkStream(ctx context.Context, stream, group, start string) error {
	return c.run(ctx, func(ctx context.Context) error {
		return c.conn.XGroupCreateMkStream(ctx, stream, group, start).Err()
	})
}

func (c *client) xinfoGroups(ctx context.Context, stream string) ([]goredis.XInfoGroup, error) {
	var groups []goredis.XInfoGroup
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		groups, err = c.conn.XInfoGroups(ctx, stream).Result()
		return err
	})
	if err != nil {
		return nil, transportError(err, "failed to inspect groups on stream %q", stream)
	}
	return groups, nil
}

// xreadgroup reads up to count entries for consumer in group, blocking
// at most block before returning empty. A nil reply (no entries
// arrived before block elapsed) is treated as "no messages"; every
// other error is a transport failure.
// xreadgroup 为 group 中的 consumer 读取最多 count 条，最多阻塞 block。
// 空回复（block 期间没有条目）按“无消息”处理；其他错误均为 transport 失败。
func (c *client) xreadgroup(ctx context.Context, stream, group, consumer, id string, count int64, block time.Duration) ([]goredis.XStream, error) {
	var streams []goredis.XStream
	err := c.run(ctx, func(ctx context.Context) error {
		var err error
		streams, err = c.conn.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{stream, id},
			Count:    count,
			Block:    block,
		}).Result()
		return err
	})
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, transportError(err, "failed to read group %q on stream %q", group, stream)
	}
	return streams, nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

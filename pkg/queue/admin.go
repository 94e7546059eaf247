package queue

import (
	"context"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nuohe369/redisqueue/pkg/metrics"
)

// Setup creates the consumer group (idempotently) on the stream,
// refuses delete-after-* when more than one group already exists on
// the stream, and marks auto-setup done.
// Setup 幂等地在 stream 上创建消费组，若 stream 上已存在多个消费组则拒绝
// delete-after-*，并标记自动 setup 已完成。
func (c *Connection) Setup(ctx context.Context) error {
	err := c.client.xgroupCreateMkStream(ctx, c.opts.Stream, c.opts.Group, "0")
	if err != nil && !isBusyGroup(err) {
		return transportError(err, "failed to create consumer group %q on stream %q", c.opts.Group, c.opts.Stream)
	}

	if c.opts.DeleteAfterAck || c.opts.DeleteAfterReject {
		groups, gerr := c.client.xinfoGroups(ctx, c.opts.Stream)
		if gerr != nil {
			return gerr
		}
		if len(groups) > 1 {
			return logicError(
				"delete_after_ack/delete_after_reject would risk deleting messages on stream %q before its other %d consumer group(s) read them",
				c.opts.Stream, len(groups)-1,
			)
		}
	}

	c.autoSetup = false
	metrics.Inc("queue_setup_total", "total number of queue setup calls")
	log.Info("setup complete: stream=%s group=%s", c.opts.Stream, c.opts.Group)
	return nil
}

// Cleanup removes both the stream and the delay queue. It prefers a
// single multi-key UNLINK; the first time that fails it permanently
// falls back, for this Connection, to issuing DEL per key, which is
// safer on clusters where a multi-key command can't span hash slots.
// Cleanup 移除 stream 与延迟队列。优先使用一次多键 UNLINK；一旦失败，
// 本 Connection 之后永久回退为逐键 DEL，在多键命令无法跨哈希槽的集群上
// 更安全。
func (c *Connection) Cleanup(ctx context.Context) error {
	keys := []string{c.opts.Stream, c.opts.delayKey()}

	if c.unlinkWorks {
		if _, err := c.client.unlink(ctx, keys...); err == nil {
			return nil
		}
		c.unlinkWorks = false
		log.Warn("UNLINK failed on this connection, falling back to per-key DEL")
	}

	for _, key := range keys {
		if _, err := c.client.del(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// GetMessageCount reports how many entries on the stream have not yet
// been delivered to this Connection's group, preferring the server's
// reported lag and falling back to an XRANGE walk on older servers.
// GetMessageCount 统计 stream 上尚未投递给本 Connection 所属 group 的条目
// 数，优先使用服务端报告的 lag，在较旧的服务端上回退为 XRANGE 遍历。
func (c *Connection) GetMessageCount(ctx context.Context) (int64, error) {
	groups, err := c.client.xinfoGroups(ctx, c.opts.Stream)
	if err != nil {
		return 0, err
	}

	var found *goredis.XInfoGroup
	for i := range groups {
		if groups[i].Name == c.opts.Group {
			found = &groups[i]
			break
		}
	}
	if found == nil {
		return 0, nil
	}
	if found.Lag != nil {
		return *found.Lag, nil
	}
	if found.LastDeliveredID == "" {
		return 0, nil
	}

	const pageSize = 100
	var count int64
	cursor := "(" + found.LastDeliveredID
	for {
		msgs, err := c.client.xrangeN(ctx, c.opts.Stream, cursor, "+", pageSize)
		if err != nil {
			return 0, err
		}
		if len(msgs) == 0 {
			break
		}
		count += int64(len(msgs))
		if len(msgs) < pageSize {
			break
		}
		next, aerr := advanceStreamID(msgs[len(msgs)-1].ID)
		if aerr != nil {
			return 0, aerr
		}
		cursor = next
	}
	return count, nil
}

// advanceStreamID advances a stream id of the canonical "<ms>-<seq>"
// form by incrementing seq, so paging resumes strictly after the last
// entry seen rather than re-reading it.
// advanceStreamID 按 "<ms>-<seq>" 形式递增 seq 来前进游标，使分页从上次
// 看到的最后一条之后严格续接，而不会重复读取它。
func advanceStreamID(id string) (string, error) {
	idx := strings.LastIndexByte(id, '-')
	if idx < 0 {
		return "", transportError(nil, "unexpected stream id format %q", id)
	}
	ms, seqStr := id[:idx], id[idx+1:]
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		return "", transportError(err, "unexpected stream id format %q", id)
	}
	return ms + "-" + strconv.FormatUint(seq+1, 10), nil
}

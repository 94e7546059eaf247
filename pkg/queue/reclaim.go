package queue

import (
	"context"
	"time"

	"github.com/nuohe369/redisqueue/pkg/metrics"
)

// reclaim inspects the single oldest pending entry in the consumer
// group and, if it has been idle at least redeliverTimeout, transfers
// its ownership to this Connection's consumer.
//
// When the oldest pending entry already belongs to this consumer, it
// returns immediately without advancing nextClaim. This is
// intentional: it means the next Get rechecks the pending cursor
// immediately instead of waiting a full claimInterval.
//
// reclaim 检查消费组中最旧的一条待处理消息，若其空闲时间不小于
// redeliverTimeout，则将其所有权转移给本 Connection 的消费者。
//
// 当最旧的待处理消息本就属于本消费者时，立即返回而不推进 nextClaim，
// 这是有意为之：意味着下一次 Get 会立刻重新检查待处理游标，而不是等待
// 一整个 claimInterval。
func (c *Connection) reclaim(ctx context.Context) error {
	oldest, err := c.client.xpendingOldest(ctx, c.opts.Stream, c.opts.Group)
	if err != nil {
		return err
	}

	if oldest == nil {
		c.nextClaim = time.Now().Add(c.opts.ClaimInterval)
		return nil
	}

	if oldest.Consumer == c.opts.Consumer {
		c.couldHavePendingMessages = true
		return nil
	}

	if oldest.Idle >= c.opts.RedeliverTimeout {
		claimed, err := c.client.xclaimJustID(ctx, c.opts.Stream, c.opts.Group, c.opts.Consumer, c.opts.RedeliverTimeout, []string{oldest.ID})
		if err != nil {
			return err
		}
		if len(claimed) > 0 {
			c.couldHavePendingMessages = true
			metrics.Inc("queue_reclaimed_total", "total number of messages reclaimed from another consumer")
		}
	}

	c.nextClaim = time.Now().Add(c.opts.ClaimInterval)
	return nil
}

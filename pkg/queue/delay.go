package queue

import (
	"context"
	"time"

	"github.com/nuohe369/redisqueue/pkg/metrics"
	"github.com/nuohe369/redisqueue/pkg/trace"
)

// promoteDelayed moves every due entry from the delay queue onto the
// stream. A popped entry that turns out not yet due (a race with
// another consumer) is re-inserted with ZADD NX and the loop stops for
// this cycle.
// promoteDelayed 将延迟队列中所有已到期的条目转移到 stream 上。若弹出的
// 条目其实尚未到期（与另一个消费者竞争），则用 ZADD NX 重新插入，本轮
// 循环随即停止。
func (c *Connection) promoteDelayed(ctx context.Context) (int, error) {
	key := c.opts.delayKey()
	now := nowScore(time.Now())

	n, err := c.client.zcount(ctx, key, now)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for i := int64(0); i < n; i++ {
		member, score, ok, err := c.client.zpopmin(ctx, key)
		if err != nil {
			return promoted, err
		}
		if !ok {
			break
		}

		if !scoreDue(score, now) {
			if _, err := c.client.zaddNX(ctx, key, score, member); err != nil {
				return promoted, err
			}
			break
		}

		dm, err := decodeDelayedMember(member)
		if err != nil {
			return promoted, err
		}
		if _, err := c.Add(ctx, dm.Body, dm.Headers, 0); err != nil {
			return promoted, err
		}
		promoted++
	}

	if promoted > 0 {
		for i := 0; i < promoted; i++ {
			metrics.Inc("queue_delay_promoted_total", "total number of delayed messages promoted onto the stream")
		}
		if trace.Enabled() {
			trace.AddEvent(ctx, "queue.delay.promoted")
		}
	}
	return promoted, nil
}

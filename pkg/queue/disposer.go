package queue

import (
	"context"

	"github.com/nuohe369/redisqueue/pkg/metrics"
)

// Ack acknowledges id, additionally deleting it from the stream when
// DeleteAfterAck is set, in which case the XDEL result, not the XACK
// result, decides success.
// Ack 确认 id，若设置了 DeleteAfterAck 则额外从 stream 中删除它，此时由
// XDEL 的结果而非 XACK 的结果决定是否成功。
func (c *Connection) Ack(ctx context.Context, id string) error {
	n, err := c.client.xack(ctx, c.opts.Stream, c.opts.Group, id)
	if err != nil {
		return err
	}
	ok := n > 0

	if c.opts.DeleteAfterAck {
		delN, err := c.client.xdel(ctx, c.opts.Stream, id)
		if err != nil {
			return err
		}
		ok = delN > 0
	}

	if !ok {
		return transportError(nil, "could not acknowledge redis message %q", id)
	}
	metrics.Inc("queue_messages_acked_total", "total number of messages acknowledged")
	return nil
}

// Reject acknowledges id and, when DeleteAfterReject is set, also
// deletes it from the stream. Here the XDEL outcome is AND-combined
// with the XACK outcome rather than overwriting it, deliberately unlike
// Ack.
// Reject 确认 id，若设置了 DeleteAfterReject 则同时从 stream 中删除它，
// 这里 XDEL 的结果与 XACK 的结果做 AND 组合而非覆盖，刻意不同于 Ack。
func (c *Connection) Reject(ctx context.Context, id string) error {
	n, err := c.client.xack(ctx, c.opts.Stream, c.opts.Group, id)
	if err != nil {
		return err
	}
	ok := n > 0

	if c.opts.DeleteAfterReject {
		delN, err := c.client.xdel(ctx, c.opts.Stream, id)
		if err != nil {
			return err
		}
		ok = ok && delN > 0
	}

	if !ok {
		return transportError(nil, "could not delete message %q from the redis stream", id)
	}
	metrics.Inc("queue_messages_rejected_total", "total number of messages rejected")
	return nil
}

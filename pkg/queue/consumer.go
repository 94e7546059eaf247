package queue

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/nuohe369/redisqueue/pkg/metrics"
	"github.com/nuohe369/redisqueue/pkg/trace"
)

// pendingCursor and newCursor are the two XREADGROUP message ids
// toggled by couldHavePendingMessages.
// pendingCursor 与 newCursor 是 couldHavePendingMessages 在两种
// XREADGROUP 消息 id 之间切换的取值。
const (
	pendingCursor = "0"
	newCursor     = ">"
)

// Get reads the next message for this consumer, running delay
// promotion and (when due) reclamation first. It toggles between
// rescanning this consumer's own pending entries and fetching new
// ones; the "flip then retry once" step is a bounded loop rather than
// a recursive call, so it can never grow the call stack.
//
// Get 为本消费者读取下一条消息，事先运行延迟提升，并在到期时运行 reclaim。
// 它在重新扫描本消费者自身待处理条目与获取新条目之间切换；"翻转后重试一次"
// 用有界循环而非递归实现，因此不会增长调用栈。
func (c *Connection) Get(ctx context.Context) (*Message, error) {
	if trace.Enabled() {
		var span oteltrace.Span
		ctx, span = trace.Start(ctx, "queue.get")
		defer span.End()
	}

	if err := c.ensureSetup(ctx); err != nil {
		return nil, err
	}
	if _, err := c.promoteDelayed(ctx); err != nil {
		return nil, err
	}
	if !c.couldHavePendingMessages && !c.nextClaim.After(time.Now()) {
		if err := c.reclaim(ctx); err != nil {
			return nil, err
		}
	}

	for {
		cursor := newCursor
		if c.couldHavePendingMessages {
			cursor = pendingCursor
		}

		streams, err := c.client.xreadgroup(ctx, c.opts.Stream, c.opts.Group, c.opts.Consumer, cursor, 1, time.Millisecond)
		if err != nil {
			return nil, err
		}

		if msg := firstMessage(streams); msg != nil {
			metrics.Set("queue_pending_cursor", "1 when reading this consumer's own pending entries, 0 when reading new entries", cursorGauge(c.couldHavePendingMessages))
			return msg, nil
		}

		if c.couldHavePendingMessages {
			c.couldHavePendingMessages = false
			continue
		}

		metrics.Set("queue_pending_cursor", "1 when reading this consumer's own pending entries, 0 when reading new entries", cursorGauge(c.couldHavePendingMessages))
		return nil, nil
	}
}

func cursorGauge(pending bool) float64 {
	if pending {
		return 1
	}
	return 0
}

// firstMessage reshapes the server's nested XREADGROUP reply into the
// first non-empty {id, data} pair, ignoring entries with empty
// payloads (a message whose fields were already deleted).
// firstMessage 将服务端嵌套的 XREADGROUP 回复重塑为第一个非空的 {id, data}
// 对，忽略空负载的条目（字段已被删除的消息）。
func firstMessage(streams []goredis.XStream) *Message {
	for _, stream := range streams {
		for _, m := range stream.Messages {
			if len(m.Values) == 0 {
				continue
			}
			fields := make(map[string]string, len(m.Values))
			for k, v := range m.Values {
				fields[k] = fmt.Sprint(v)
			}
			return &Message{
				ID:   m.ID,
				Data: map[string]map[string]string{m.ID: fields},
			}
		}
	}
	return nil
}

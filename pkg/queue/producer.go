package queue

import (
	"context"
	"strconv"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/nuohe369/redisqueue/pkg/metrics"
	"github.com/nuohe369/redisqueue/pkg/trace"
)

// Add appends a message to the stream (delayInMs <= 0) or schedules it
// on the delay queue (delayInMs > 0), returning the id the server (or
// the delay queue, implicitly) assigned.
// Add 将消息追加到 stream（delayInMs <= 0）或安排进延迟队列
// （delayInMs > 0），返回服务端（或隐式地，延迟队列）分配的 id。
func (c *Connection) Add(ctx context.Context, body string, headers map[string]string, delayInMs int64) (string, error) {
	if trace.Enabled() {
		var span oteltrace.Span
		ctx, span = trace.Start(ctx, "queue.add")
		defer span.End()
	}

	if err := c.ensureSetup(ctx); err != nil {
		return "", err
	}

	var id string
	var err error
	if delayInMs > 0 {
		id, err = c.addDelayed(ctx, body, headers, delayInMs)
	} else {
		id, err = c.addImmediate(ctx, body, headers)
	}
	if err != nil {
		return "", err
	}

	metrics.IncWithLabels(
		"queue_messages_sent_total",
		"total number of messages sent, partitioned by whether they were delayed",
		[]string{"delayed"},
		strconv.FormatBool(delayInMs > 0),
	)
	return id, nil
}

func (c *Connection) addDelayed(ctx context.Context, body string, headers map[string]string, delayInMs int64) (string, error) {
	member, uniqid, err := encodeDelayedMember(body, headers)
	if err != nil {
		return "", err
	}
	score, err := computeDelayScore(time.Now(), delayInMs)
	if err != nil {
		return "", err
	}
	added, err := c.client.zaddNX(ctx, c.opts.delayKey(), score, member)
	if err != nil {
		return "", err
	}
	if !added {
		return "", transportError(nil, "could not schedule delayed message on %q", c.opts.delayKey())
	}
	return uniqid, nil
}

func (c *Connection) addImmediate(ctx context.Context, body string, headers map[string]string) (string, error) {
	member, err := encodeEnvelope(body, headers)
	if err != nil {
		return "", err
	}
	id, err := c.client.xadd(ctx, c.opts.Stream, c.opts.StreamMaxEntries, member)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", transportError(nil, "could not append message to stream %q", c.opts.Stream)
	}
	return id, nil
}

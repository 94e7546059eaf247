// Package queue implements a durable, delayed, at-least-once message
// queue transport on Redis Streams, consumer groups, and a sorted-set
// delay queue.
// Package queue 在 Redis Stream、消费组和有序集合延迟队列之上实现了一个
// 持久化、可延迟、至少一次投递的消息队列传输层。
package queue

import "fmt"

// Kind classifies a queue error for callers that want to branch on it
// without string matching.
// Kind 对 queue 错误分类，便于调用方按类型分支而不必匹配字符串。
type Kind int

const (
	// KindConfig marks invalid/empty options or a malformed DSN,
	// raised synchronously at construction and never recovered.
	KindConfig Kind = iota
	// KindTransport marks any server/client failure during
	// add/get/ack/reject/setup; always surfaced to the caller.
	KindTransport
	// KindLogic marks a precondition violation detected at setup
	// (multiple groups plus delete-after-*).
	KindLogic
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindTransport:
		return "TransportError"
	case KindLogic:
		return "LogicError"
	default:
		return "Error"
	}
}

// Error is the single error type the package returns; Kind tells the
// caller which of the three categories (ConfigError, TransportError,
// LogicError) applies.
// Error 是本包返回的唯一错误类型；Kind 标明属于三类错误中的哪一种。
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func configError(format string, args ...any) *Error {
	return newError(KindConfig, nil, format, args...)
}

func configErrorf(err error, format string, args ...any) *Error {
	return newError(KindConfig, err, format, args...)
}

func transportError(err error, format string, args ...any) *Error {
	return newError(KindTransport, err, format, args...)
}

func logicError(format string, args ...any) *Error {
	return newError(KindLogic, nil, format, args...)
}

// IsKind reports whether err is a *Error of the given Kind.
// IsKind 判断 err 是否为给定 Kind 的 *Error。
func IsKind(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == kind
}

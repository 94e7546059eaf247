package queue

import (
	"fmt"
	"math"
	"time"
)

// nowScore renders the current wall clock as "seconds-since-epoch
// concatenated with a 3-digit millisecond fraction", the same encoding
// used for delay-queue scores, so it can be compared against them with
// scoreDue.
// nowScore 将当前时钟渲染为“秒级时间戳拼接 3 位毫秒”的字符串，与延迟队列分数
// 采用相同编码，可直接用 scoreDue 比较。
func nowScore(now time.Time) string {
	ms := now.Nanosecond() / int(time.Millisecond)
	return fmt.Sprintf("%d%03d", now.Unix(), ms)
}

// scoreDue reports whether score (as produced by nowScore or
// computeDelayScore) is due relative to now, using a (length, lex)
// comparison: a longer string always represents a larger number, and
// equal-length strings compare lexicographically.
// scoreDue 判断 score（由 nowScore 或 computeDelayScore 生成）相对 now
// 是否已到期，采用 (长度, 字典序) 比较：更长的字符串总是代表更大的数值，
// 长度相同则按字典序比较。
func scoreDue(score, now string) bool {
	if len(score) != len(now) {
		return len(score) < len(now)
	}
	return score <= now
}

// computeDelayScore encodes "now + delayMs" using the same (sec,
// ms3) string scheme. Overflow of the second component during carry
// propagation is reported as a transport error.
// computeDelayScore 用相同的 (秒, 3 位毫秒) 字符串方案编码 "now + delayMs"。
// 进位传播导致秒部分溢出时，返回 transport 错误。
func computeDelayScore(now time.Time, delayMs int64) (string, error) {
	sec := now.Unix()
	ms3 := int64(now.Nanosecond() / int(time.Millisecond))

	scoreLow := ms3 + delayMs
	carry := scoreLow / 1000
	scoreLow = scoreLow % 1000

	if carry > 0 {
		if sec > math.MaxInt64-carry {
			return "", transportError(nil, "message delay is too big")
		}
		sec += carry
	}
	return fmt.Sprintf("%d%03d", sec, scoreLow), nil
}

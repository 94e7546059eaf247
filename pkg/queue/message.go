package queue

import (
	"github.com/google/uuid"

	"github.com/nuohe369/redisqueue/pkg/json"
)

// Envelope is the JSON payload stored under a stream entry's
// "message" field.
// Envelope 是存储在 stream 条目 "message" 字段下的 JSON 负载。
type Envelope struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// delayedMember is the JSON payload stored as a delay-queue (sorted
// set) member. Uniqid guarantees distinct members for otherwise
// identical (body, headers, scheduledAt) tuples.
// delayedMember 是延迟队列（有序集合）成员存储的 JSON 负载。Uniqid 保证
// 对于完全相同的 (body, headers, scheduledAt) 三元组，成员也各不相同。
type delayedMember struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
	Uniqid  string            `json:"uniqid"`
}

// Message is the reshaped reply returned by Get: the stream id plus
// the field/value map for each streamId in the reply (in practice a
// single streamId with a single "message" field).
// Message 是 Get 返回的重塑后的结果：stream id 加上每个 streamId 对应的
// 字段/值映射（实践中只有一个 streamId、一个 "message" 字段）。
type Message struct {
	ID   string
	Data map[string]map[string]string
}

func encodeEnvelope(body string, headers map[string]string) (string, error) {
	if headers == nil {
		headers = map[string]string{}
	}
	b, err := json.MarshalString(Envelope{Body: body, Headers: headers})
	if err != nil {
		return "", transportError(err, "failed to encode message envelope")
	}
	return b, nil
}

// encodeDelayedMember returns both the JSON payload to store as the
// sorted-set member and the uniqid embedded in it, which is the short
// id callers should see for this message.
// encodeDelayedMember 返回待存入有序集合的 JSON 负载，以及嵌入其中的
// uniqid——调用方应当看到的这条消息的短 id。
func encodeDelayedMember(body string, headers map[string]string) (member, uniqid string, err error) {
	if headers == nil {
		headers = map[string]string{}
	}
	uniqid = newUniqid()
	b, err := json.MarshalString(delayedMember{Body: body, Headers: headers, Uniqid: uniqid})
	if err != nil {
		return "", "", transportError(err, "failed to encode delayed message")
	}
	return b, uniqid, nil
}

func decodeDelayedMember(raw string) (delayedMember, error) {
	var m delayedMember
	if err := json.UnmarshalString(raw, &m); err != nil {
		return delayedMember{}, transportError(err, "failed to decode delayed message")
	}
	return m, nil
}

// newUniqid mints a fresh unique string for a delay-queue member.
// newUniqid 为延迟队列成员生成新的唯一字符串。
func newUniqid() string {
	return uuid.New().String()
}

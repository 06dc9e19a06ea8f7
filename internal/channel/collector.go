package channel

import (
	"sync"

	"github.com/rs/zerolog/log"

	"store-upgrader/internal/ports"
	"store-upgrader/internal/types"
)

const msgNoReply = "Unexpected failure"

// replyCollector keeps the first outcome a handler reports. Later
// completions are dropped.
type replyCollector struct {
	mu    sync.Mutex
	id    string
	done  bool
	reply types.Reply
}

func newReplyCollector(id string) *replyCollector {
	return &replyCollector{id: id}
}

func (c *replyCollector) Success(value any) {
	c.complete(types.Reply{Status: types.ReplyStatusSuccess, Value: value})
}

func (c *replyCollector) Error(code types.ErrorCode, message string) {
	c.complete(types.Reply{Status: types.ReplyStatusError, Code: code, Message: message})
}

func (c *replyCollector) NotImplemented() {
	c.complete(types.Reply{Status: types.ReplyStatusNotImplemented})
}

func (c *replyCollector) complete(reply types.Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		log.Warn().
			Str("id", c.id).
			Str("status", string(reply.Status)).
			Msg("dropping duplicate method result")
		return
	}
	c.done = true
	c.reply = reply
}

// Reply returns the recorded outcome, or unknown_error when the handler
// never completed.
func (c *replyCollector) Reply() types.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		log.Error().Str("id", c.id).Msg("method handler returned without a result")
		return types.Reply{Status: types.ReplyStatusError, Code: types.ErrorCodeUnknown, Message: msgNoReply}
	}
	return c.reply
}

var _ ports.MethodResult = (*replyCollector)(nil)

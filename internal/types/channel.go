package types

import (
	"encoding/json"
	"fmt"
)

// MethodCall is a single request received on the channel.
type MethodCall struct {
	Method Method
	Args   map[string]any
}

// Reply is the one outcome produced for a MethodCall.
type Reply struct {
	Status  ReplyStatus `json:"status" yaml:"status"`
	Value   any         `json:"result,omitempty" yaml:"result,omitempty"`
	Code    ErrorCode   `json:"code,omitempty" yaml:"code,omitempty"`
	Message string      `json:"message,omitempty" yaml:"message,omitempty"`
}

// Envelope is the wire form of a MethodCall.
type Envelope struct {
	ID      string         `json:"id"`
	Channel string         `json:"channel,omitempty"`
	Method  string         `json:"method"`
	Args    map[string]any `json:"args,omitempty"`
}

type ReplyError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ReplyEnvelope is the wire form of a Reply.
type ReplyEnvelope struct {
	ID     string      `json:"id"`
	Status ReplyStatus `json:"status"`
	Result any         `json:"result,omitempty"`
	Error  *ReplyError `json:"error,omitempty"`
}

func NewReplyEnvelope(id string, reply Reply) ReplyEnvelope {
	out := ReplyEnvelope{ID: id, Status: reply.Status}
	switch reply.Status {
	case ReplyStatusSuccess:
		out.Result = reply.Value
	case ReplyStatusError:
		out.Error = &ReplyError{Code: reply.Code, Message: reply.Message}
	}
	return out
}

func (r ReplyEnvelope) String() string {
	switch r.Status {
	case ReplyStatusSuccess:
		if r.Result == nil {
			return r.ID + ": success"
		}
		data, err := json.Marshal(r.Result)
		if err != nil {
			return fmt.Sprintf("%s: success %v", r.ID, r.Result)
		}
		return fmt.Sprintf("%s: success %s", r.ID, data)
	case ReplyStatusError:
		if r.Error == nil {
			return r.ID + ": error"
		}
		return fmt.Sprintf("%s: error %s: %s", r.ID, r.Error.Code, r.Error.Message)
	default:
		return r.ID + ": not implemented"
	}
}

package channel

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"store-upgrader/internal/ports"
	"store-upgrader/internal/types"
)

const maxLineSize = 1 << 20

// Server routes envelopes for one named channel to a MethodHandler.
type Server struct {
	handler ports.MethodHandler
	channel string
}

func NewServer(handler ports.MethodHandler, channel string) *Server {
	if channel == "" {
		channel = types.ChannelName
	}
	return &Server{handler: handler, channel: channel}
}

func (s *Server) Channel() string {
	return s.channel
}

// Invoke runs one request and always produces exactly one reply.
func (s *Server) Invoke(ctx context.Context, env types.Envelope) types.ReplyEnvelope {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if env.Channel != "" && env.Channel != s.channel {
		log.Debug().
			Str("id", env.ID).
			Str("channel", env.Channel).
			Msg("request for unregistered channel")
		return types.NewReplyEnvelope(env.ID, types.Reply{Status: types.ReplyStatusNotImplemented})
	}

	collector := newReplyCollector(env.ID)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("id", env.ID).
					Str("method", env.Method).
					Str("panic", fmt.Sprint(r)).
					Msg("method handler panicked")
				collector.Error(types.ErrorCodeUnknown, msgNoReply)
			}
		}()
		s.handler.HandleCall(ctx, types.MethodCall{Method: types.Method(env.Method), Args: env.Args}, collector)
	}()

	reply := collector.Reply()
	log.Debug().
		Str("id", env.ID).
		Str("method", env.Method).
		Str("status", string(reply.Status)).
		Msg("method call finished")
	return types.NewReplyEnvelope(env.ID, reply)
}

// ServeStream reads JSON-lines requests from r and writes one JSON-lines
// reply per request to w. Calls run concurrently, so replies may be
// reordered; the id correlates them. It returns once r is exhausted and
// every in-flight call has replied, or when ctx ends.
func (s *Server) ServeStream(ctx context.Context, r io.Reader, w io.Writer) error {
	assert.NotEmpty(ctx, s.channel, "channel name must be set")

	var writeMu sync.Mutex
	encoder := json.NewEncoder(w)
	write := func(reply types.ReplyEnvelope) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := encoder.Encode(reply); err != nil {
			log.Error().Err(err).Str("id", reply.ID).Msg("failed to write reply")
		}
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		br := bufio.NewReaderSize(r, 64*1024)
		for {
			line, oversized, err := readLine(br, maxLineSize)
			if oversized {
				log.Warn().Int("limit", maxLineSize).Msg("skipping oversized request line")
			} else if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					readErr <- ctx.Err()
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				readErr <- err
				return
			}
		}
	}()

	var inflight sync.WaitGroup
	defer inflight.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				inflight.Wait()
				if err := <-readErr; err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					return errbuilder.New().
						WithCode(errbuilder.CodeInternal).
						WithMsg("failed to read channel input").
						WithCause(err)
				}
				return nil
			}
			env, ok := decodeEnvelope(line)
			if !ok {
				continue
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				write(s.Invoke(ctx, env))
			}()
		}
	}
}

func decodeEnvelope(line []byte) (types.Envelope, bool) {
	if len(bytes.TrimSpace(line)) == 0 {
		return types.Envelope{}, false
	}
	var env types.Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		log.Warn().Err(err).Msg("skipping malformed request line")
		return types.Envelope{}, false
	}
	return env, true
}

// readLine returns the next newline-terminated line from br. A line longer
// than limit is consumed up to its newline and reported as oversized
// without being buffered.
func readLine(br *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	oversized := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !oversized {
			if len(line)+len(bytes.TrimRight(chunk, "\r\n")) > limit {
				oversized = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, oversized, err
	}
}

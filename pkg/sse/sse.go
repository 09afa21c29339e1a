// Package sse writes Server-Sent Events. Visualization progress is streamed
// with it:
//
//	stream := sse.New(c.W, c.R)
//	if stream == nil {
//	    return // 500 already written
//	}
//	stream.Send("progress", state)
package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/furnivision/pkg/response"
)

// Stream is one open event stream. It is not safe for concurrent use.
type Stream struct {
	w      io.Writer
	rc     *http.ResponseController
	done   <-chan struct{}
	closed bool
	seq    int
}

// New writes the stream headers and flushes them. If w cannot flush, even
// through Unwrap, it answers 500 and returns nil.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	if err := rc.Flush(); err != nil {
		for _, k := range []string{"Content-Type", "Cache-Control", "Connection", "X-Accel-Buffering"} {
			h.Del(k)
		}
		response.Error(w, http.StatusInternalServerError, "Streaming is not supported")
		return nil
	}
	return &Stream{w: w, rc: rc, done: r.Context().Done()}
}

// Send writes one event with a JSON data line and the next id.
func (s *Stream) Send(event string, data any) error {
	if s.IsClosed() {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: encode %s: %w", event, err)
	}
	s.seq++

	var b bytes.Buffer
	fmt.Fprintf(&b, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, oneLine(event), payload)
	return s.write(b.Bytes())
}

// Retry sets the client's reconnect delay.
func (s *Stream) Retry(ms int) {
	_ = s.write([]byte(fmt.Sprintf("retry: %d\n\n", ms)))
}

// Comment writes a comment line; clients ignore it, proxies see traffic.
func (s *Stream) Comment(text string) {
	_ = s.write([]byte(": " + oneLine(text) + "\n\n"))
}

// IsClosed reports a client disconnect or an earlier failed write.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	if !s.closed {
		select {
		case <-s.done:
			s.closed = true
		default:
		}
	}
	return s.closed
}

func (s *Stream) write(p []byte) error {
	if s.IsClosed() {
		return nil
	}
	if _, err := s.w.Write(p); err != nil {
		s.closed = true
		return fmt.Errorf("sse: write: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		s.closed = true
		return fmt.Errorf("sse: flush: %w", err)
	}
	return nil
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

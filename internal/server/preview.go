package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coreman2200/gridzilla/internal/transform"
)

// viewer is one preview connection. Frames come from the loop and the
// connect handler, so writes are serialised.
type viewer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (v *viewer) write(b []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	return v.conn.WriteMessage(websocket.TextMessage, b)
}

// PublishFrame implements transform.FramePublisher. It is called on the
// loop goroutine and never blocks on a slow client for long.
func (s *Server) PublishFrame(f transform.Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		s.log.Error().Err(err).Msg("encode frame")
		return
	}
	s.mu.Lock()
	s.lastFrame = b
	s.frameID = f.ID
	viewers := make([]*viewer, 0, len(s.preview))
	for v := range s.preview {
		viewers = append(viewers, v)
	}
	s.mu.Unlock()

	for _, v := range viewers {
		if err := v.write(b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
}

// HandlePreviewWS streams every rendered frame, starting with the latest.
func (s *Server) HandlePreviewWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	v := &viewer{conn: conn}
	s.mu.Lock()
	s.preview[v] = true
	last := s.lastFrame
	s.mu.Unlock()
	if last != nil {
		_ = v.write(last)
	}

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.preview, v)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

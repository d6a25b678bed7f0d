// Package server is the HTTP side of the controller: viewer sessions over
// websocket, the preview frame stream and health reporting.
//
// Handlers run on net/http goroutines. Anything that touches scenes is
// posted onto the loop.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/gridzilla/internal/loop"
	"github.com/coreman2200/gridzilla/internal/names"
	"github.com/coreman2200/gridzilla/internal/scene"
)

// Rotation reports what the scheduler is doing. Both methods must be safe
// from any goroutine.
type Rotation interface {
	Current() string
	Advances() int64
}

type Server struct {
	loop     loop.Loop
	rotation Rotation
	log      zerolog.Logger

	// loop-owned
	observers []scene.ConnectionObserver
	messages  []*scene.Messages

	mu        sync.RWMutex
	sessions  map[*session]bool
	preview   map[*viewer]bool
	lastFrame []byte
	frameID   uint64
	startTime time.Time

	names         *names.List
	namesPassword string

	upgrader websocket.Upgrader
}

func New(l loop.Loop, rotation Rotation, log zerolog.Logger) *Server {
	return &Server{
		loop:      l,
		rotation:  rotation,
		log:       log,
		sessions:  map[*session]bool{},
		preview:   map[*viewer]bool{},
		startTime: time.Now(),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Attach wires the server to the running show before it starts serving.
// Every scene implementing scene.ConnectionObserver hears about viewers;
// viewer messages go to the first messages scene.
func (s *Server) Attach(scenes []scene.Scene, messages []*scene.Messages) {
	s.observers = nil
	for _, sc := range scenes {
		if o, ok := sc.(scene.ConnectionObserver); ok {
			s.observers = append(s.observers, o)
		}
	}
	s.messages = messages
}

// Handler serves every route with permissive CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleSessionWS)
	mux.HandleFunc("/preview", s.HandlePreviewWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/status", s.HandleStatus)
	mux.HandleFunc("/messages", s.HandleMessages)
	mux.HandleFunc("POST /names", s.HandleAddName)
	mux.HandleFunc("/names/{name}", s.HandleCheckName)
	return withCORS(mux)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}

var errLoopBusy = errors.New("loop did not answer")

// call runs f on the loop and waits for it.
func (s *Server) call(ctx context.Context, f func()) error {
	done := make(chan struct{})
	s.loop.Post(func() {
		f()
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errLoopBusy
	}
}

type session struct {
	id   string
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (s *session) ID() string { return s.id }

func (s *session) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(time.Second))
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// HandleSessionWS keeps one viewer connected. Text frames carrying a
// message are queued for display; the reply says whether it was accepted.
func (s *Server) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	// ids are never taken from the client: they scope message deletion
	id := newSessionID()
	sess := &session{id: id, conn: conn}

	s.mu.Lock()
	s.sessions[sess] = true
	s.mu.Unlock()
	s.log.Info().Str("session", id).Msg("viewer connected")
	s.loop.Post(func() {
		for _, o := range s.observers {
			o.OnUserConnected(sess)
		}
	})
	_ = sess.send(map[string]any{"sessionId": id, "scene": s.rotation.Current()})

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sess)
			s.mu.Unlock()
			conn.Close()
			s.log.Info().Str("session", id).Msg("viewer disconnected")
			s.loop.Post(func() {
				for _, o := range s.observers {
					o.OnUserDisconnected(sess)
				}
			})
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var m scene.Message
			if err := json.Unmarshal(data, &m); err != nil {
				_ = sess.send(map[string]any{"status": "Error", "error": "bad message"})
				continue
			}
			m.Session = id
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = s.enqueue(ctx, m)
			cancel()
			if err != nil {
				_ = sess.send(map[string]any{"status": "Error", "error": err.Error()})
				continue
			}
			_ = sess.send(map[string]any{"status": "OK"})
		}
	}()
}

var errNoMessageScene = errors.New("messages are not part of this show")

func (s *Server) enqueue(ctx context.Context, m scene.Message) error {
	if len(s.messages) == 0 {
		return errNoMessageScene
	}
	var err error
	if cerr := s.call(ctx, func() { err = s.messages[0].Enqueue(m) }); cerr != nil {
		return cerr
	}
	return err
}

// HandleMessages accepts a message over plain HTTP, for viewers without a
// websocket.
func (s *Server) HandleMessages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		var queue []scene.Message
		if len(s.messages) > 0 {
			if err := s.call(r.Context(), func() { queue = s.messages[0].Queued() }); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"queue": queue})
	case http.MethodPost:
		var m scene.Message
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "Error", "error": "bad message"})
			return
		}
		if err := s.enqueue(r.Context(), m); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "Error", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// HandleStatus reports the message queue.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var queued, requests int
	if len(s.messages) > 0 {
		if err := s.call(r.Context(), func() {
			queued = len(s.messages[0].Queued())
			requests = s.messages[0].Requests()
		}); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"messages": map[string]int{"queued": queued, "requests": requests},
	})
}

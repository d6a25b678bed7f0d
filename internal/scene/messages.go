package scene

import (
	"errors"
	"time"

	"github.com/coreman2200/gridzilla/internal/pixel"
)

const (
	DefaultMessagesPeriod        = 60 * time.Second
	DefaultMessagesPerItemPeriod = 8 * time.Second
)

var ErrEmptyMessage = errors.New("message has no text")

// NameChecker vets the recipient and sender of a message before it is
// queued.
type NameChecker interface {
	Check(names string) error
}

// Message is one viewer submission.
type Message struct {
	Recipient string    `json:"recipient"`
	Text      string    `json:"message"`
	Sender    string    `json:"sender"`
	Color     pixel.RGB `json:"-"`
	// Session is the submitting viewer, empty for samples and plain HTTP
	// posts. It is never serialised.
	Session string `json:"-"`
}

// Messages shows queued viewer messages, one per item period. With an
// empty queue it shows a single sample instead.
//
// Pause lets the message on screen finish before completing; ForcePause
// cuts it short.
type Messages struct {
	Lifecycle
	queue   []Message
	samples []Message
	period  time.Duration
	perItem time.Duration

	sample    int
	used      time.Duration
	shown     int
	pausing   bool
	connected map[string]bool
	requests  int
	names     NameChecker

	// on screen
	lines  []string
	color  pixel.RGB
	offset int
	gen    int
}

func NewMessages(name string, env Env, samples []Message, o Options) *Messages {
	s := &Messages{
		samples:   samples,
		period:    o.period(DefaultMessagesPeriod),
		perItem:   o.perItem(DefaultMessagesPerItemPeriod),
		connected: make(map[string]bool),
	}
	s.init(s, name, env)
	return s
}

// CheckNames makes Enqueue reject messages whose names c does not know.
func (s *Messages) CheckNames(c NameChecker) { s.names = c }

// Enqueue adds a message to the back of the queue.
func (s *Messages) Enqueue(m Message) error {
	if m.Text == "" {
		return ErrEmptyMessage
	}
	if s.names != nil {
		for _, n := range []string{m.Recipient, m.Sender} {
			if n == "" {
				continue
			}
			if err := s.names.Check(n); err != nil {
				return err
			}
		}
	}
	s.queue = append(s.queue, m)
	s.requests++
	return nil
}

// Queued returns the messages not yet shown.
func (s *Messages) Queued() []Message { return append([]Message(nil), s.queue...) }

// Requests counts every accepted message.
func (s *Messages) Requests() int { return s.requests }

func (s *Messages) OnUserConnected(sess Session) {
	s.connected[sess.ID()] = true
}

// OnUserDisconnected drops the viewer's messages that have not been shown.
func (s *Messages) OnUserDisconnected(sess Session) {
	id := sess.ID()
	delete(s.connected, id)
	kept := s.queue[:0]
	for _, m := range s.queue {
		if m.Session != id {
			kept = append(kept, m)
		}
	}
	if n := len(s.queue) - len(kept); n > 0 {
		s.log.Info().Str("session", id).Int("dropped", n).Msg("viewer left")
	}
	s.queue = kept
}

func (s *Messages) Run() {
	if len(s.queue) == 0 && len(s.samples) == 0 {
		s.skip()
		return
	}
	if !s.begin() {
		return
	}
	s.used = 0
	s.shown = 0
	s.pausing = false
	s.showNext()
}

func (s *Messages) showNext() {
	if s.pausing || s.used+s.perItem > s.period {
		s.complete()
		return
	}
	var m Message
	switch {
	case len(s.queue) > 0:
		m, s.queue = s.queue[0], s.queue[1:]
	case s.shown == 0 && len(s.samples) > 0:
		m = s.samples[s.sample%len(s.samples)]
		s.sample++
	default:
		s.complete()
		return
	}
	s.shown++
	s.draw(m)
	s.used += s.perItem
	s.after(s.perItem, s.showNext)
}

func (s *Messages) draw(m Message) {
	c := m.Color
	if c == (pixel.RGB{}) {
		c = pixel.RGB{R: 255, G: 255, B: 255}
	}
	var lines []string
	if m.Recipient != "" {
		lines = append(lines, "To: "+m.Recipient)
	}
	lines = append(lines, m.Text)
	if m.Sender != "" {
		lines = append(lines, "From: "+m.Sender)
	}
	s.lines, s.color, s.offset = lines, c, 0
	s.gen++
	s.render()
	if overflows(lines, s.env.Canvas.W) {
		s.after(marqueeInterval, s.scroller(s.gen))
	}
}

// scroller moves the lines of message gen until the next message replaces
// it.
func (s *Messages) scroller(gen int) func() {
	var tick func()
	tick = func() {
		if gen != s.gen {
			return
		}
		s.offset++
		s.render()
		s.after(marqueeInterval, tick)
	}
	return tick
}

func (s *Messages) render() {
	canvas := s.env.Canvas
	canvas.Clear()
	for i, top := range centredTops(len(s.lines), canvas.H) {
		drawLine(canvas, s.lines[i], 0, canvas.W, top, s.offset, s.color)
	}
	s.show()
}

// Pause finishes the message on screen, then completes.
func (s *Messages) Pause() {
	if !s.running {
		return
	}
	s.pausing = true
}

func (s *Messages) ForcePause() {
	s.complete()
}

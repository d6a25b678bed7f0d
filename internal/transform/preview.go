package transform

import (
	"bytes"

	"github.com/cnf/structhash"

	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Frame is a rendered buffer as sent to preview clients. RGB is packed
// top row first.
type Frame struct {
	ID     uint64 `json:"frame_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	RGB    []byte `json:"rgb"`
}

// FramePublisher receives preview frames. The server's websocket hub is the
// production one.
type FramePublisher interface {
	PublishFrame(f Frame)
}

// Preview stands in for the grid during development: frames go to browser
// clients instead of controllers. Identical consecutive frames are skipped.
type Preview struct {
	pub  FramePublisher
	last []byte
	id   uint64
}

func NewPreview(pub FramePublisher) *Preview {
	return &Preview{pub: pub}
}

type previewContent struct {
	Width, Height int
	RGB           []byte
}

func (p *Preview) TransformScreen(b *pixel.Buffer) error {
	c := previewContent{Width: b.W, Height: b.H, RGB: b.Bytes()}
	hash := structhash.Md5(c, 1)
	if bytes.Equal(p.last, hash) {
		return nil
	}
	p.last = hash
	p.id++
	p.pub.PublishFrame(Frame{ID: p.id, Width: c.Width, Height: c.Height, RGB: c.RGB})
	return nil
}

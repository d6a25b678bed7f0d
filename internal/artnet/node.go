package artnet

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Node is a UDP Art-Net sender. One socket is opened per distinct source
// port; when the port is taken the node falls back to an ephemeral one.
type Node struct {
	// DestPort is where packets go, Port unless a test says otherwise.
	DestPort int
	Log      zerolog.Logger

	mu     sync.Mutex
	stages map[key]*stage
	conns  map[int]*net.UDPConn
	dests  map[string]*net.UDPAddr
}

func NewNode() *Node {
	return &Node{
		DestPort: Port,
		Log:      log.Logger,
		stages:   make(map[key]*stage),
		conns:    make(map[int]*net.UDPConn),
		dests:    make(map[string]*net.UDPAddr),
	}
}

func (n *Node) Configure(u layout.Universe) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	k := key{u.Address, u.Universe}
	if _, ok := n.stages[k]; ok {
		return nil
	}
	if u.Universe < 0 || u.Universe > 0x7fff {
		return fmt.Errorf("%w: universe %d out of range", layout.ErrConfiguration, u.Universe)
	}
	if _, ok := n.dests[u.Address]; !ok {
		dst, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(u.Address, strconv.Itoa(n.DestPort)))
		if err != nil {
			return fmt.Errorf("%w: controller %s: %v", layout.ErrConfiguration, u.Address, err)
		}
		n.dests[u.Address] = dst
	}
	if _, ok := n.conns[u.SourcePort]; !ok {
		conn, err := n.listen(u.SourcePort)
		if err != nil {
			return err
		}
		n.conns[u.SourcePort] = conn
	}
	n.stages[k] = newStage(u)
	n.Log.Debug().Str("universe", k.String()).Msg("configured universe")
	return nil
}

func (n *Node) listen(port int) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err == nil {
		return conn, nil
	}
	if port == 0 {
		return nil, fmt.Errorf("%w: open socket: %v", ErrTransmit, err)
	}
	n.Log.Warn().Err(err).Int("port", port).Msg("source port unavailable, using an ephemeral port")
	conn, err = net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("%w: open socket: %v", ErrTransmit, err)
	}
	return conn, nil
}

func (n *Node) SetChannelData(address string, universe, channel int, c pixel.RGB) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if s, ok := n.stages[key{address, universe}]; ok {
		s.set(channel, c)
	}
}

func (n *Node) Send(address string, universe int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	k := key{address, universe}
	s, ok := n.stages[k]
	if !ok {
		return fmt.Errorf("%w: universe %s not configured", ErrTransmit, k)
	}
	if !s.due() {
		return nil
	}
	b, err := Dmx{Sequence: s.next(), Universe: uint16(universe), Data: s.data}.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransmit, k, err)
	}
	if _, err := n.conns[s.u.SourcePort].WriteToUDP(b, n.dests[address]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransmit, k, err)
	}
	s.markSent()
	return nil
}

func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	var errs []error
	for p, c := range n.conns {
		errs = append(errs, c.Close())
		delete(n.conns, p)
	}
	return errors.Join(errs...)
}

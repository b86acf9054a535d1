package transport

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync/atomic"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
)

const DefaultReadBuffer = 2048

// PoseUpdater receives decoded observations, typically a *pose.Store.
type PoseUpdater interface {
	Update(b pose.Body, p pose.Pose) error
}

// Listener is the UDP pose source.
type Listener struct {
	conn     *net.UDPConn
	dst      PoseUpdater
	logger   *log.Logger
	bufSize  int
	received atomic.Uint64
	dropped  atomic.Uint64
}

func Listen(addr string, bufSize int, dst PoseUpdater, logger *log.Logger) (*Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = DefaultReadBuffer
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Listener{conn: conn, dst: dst, logger: logger, bufSize: bufSize}, nil
}

func (l *Listener) Addr() net.Addr { return l.conn.LocalAddr() }

// Serve reads datagrams into the updater until ctx ends or the listener is
// closed. Malformed datagrams are logged and dropped.
func (l *Listener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { l.conn.Close() })
	defer stop()

	buf := make([]byte, l.bufSize)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.logger.Printf("pose read: %v", err)
			continue
		}

		msg, err := ParsePoseMessage(buf[:n])
		if err != nil {
			l.dropped.Add(1)
			l.logger.Printf("drop datagram from %v: %v", from, err)
			continue
		}
		if err := l.dst.Update(msg.Body, msg.Pose); err != nil {
			l.dropped.Add(1)
			l.logger.Printf("drop %s pose: %v", msg.Body, err)
			continue
		}
		l.received.Add(1)
	}
}

func (l *Listener) Close() error { return l.conn.Close() }

// Stats reports accepted and dropped datagram counts.
func (l *Listener) Stats() (received, dropped uint64) {
	return l.received.Load(), l.dropped.Load()
}

// CommandSender is the UDP command sink. An empty address gives a sender
// that discards every command.
type CommandSender struct {
	conn *net.UDPConn
}

func NewCommandSender(addr string) (*CommandSender, error) {
	if addr == "" {
		return &CommandSender{}, nil
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}
	return &CommandSender{conn: conn}, nil
}

func (s *CommandSender) Send(cmd control.Command) error {
	if s == nil || s.conn == nil {
		return nil
	}
	_, err := s.conn.Write(FormatCommand(cmd))
	return err
}

func (s *CommandSender) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Package feed connects the ingestion handler to a NATS subject carrying raw
// position packets.
package feed

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

// Receiver accepts raw packets without blocking.
type Receiver interface {
	ReceiveUnfiltered(packet []byte) bool
}

// Subscriber forwards every message on one subject to a Receiver.
type Subscriber struct {
	url      string
	subject  string
	receiver Receiver

	delivered atomic.Int64
	rejected  atomic.Int64
}

func NewSubscriber(url, subject string, receiver Receiver) *Subscriber {
	if receiver == nil {
		panic("feed: receiver must not be nil")
	}
	return &Subscriber{url: url, subject: subject, receiver: receiver}
}

// Start connects, subscribes and blocks until ctx is cancelled, then drains
// the connection. An unreachable server is retried in the background; a
// connection that cannot be set up at all disables the feed without failing
// the caller.
func (s *Subscriber) Start(ctx context.Context) error {
	nc, err := nats.Connect(s.url,
		nats.Name("ais-coverage"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ConnectHandler(func(c *nats.Conn) {
			slog.Info("[Feed] Connected", "url", c.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("[Feed] Disconnected", "url", s.url, "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("[Feed] Reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		slog.Error("[Feed] Feed disabled, cannot connect to nats", "url", s.url, "error", err)
		return nil
	}

	sub, err := nc.Subscribe(s.subject, s.handleMsg)
	if err != nil {
		nc.Close()
		slog.Error("[Feed] Feed disabled, cannot subscribe", "subject", s.subject, "error", err)
		return nil
	}
	slog.Info("[Feed] Subscribed", "url", s.url, "subject", sub.Subject)

	<-ctx.Done()

	if err := nc.Drain(); err != nil {
		slog.Warn("[Feed] Drain failed", "error", err)
		nc.Close()
	}
	slog.Info("[Feed] Stopped",
		"delivered", s.delivered.Load(),
		"rejected", s.rejected.Load())
	return nil
}

func (s *Subscriber) handleMsg(msg *nats.Msg) {
	if len(msg.Data) == 0 {
		return
	}
	if s.receiver.ReceiveUnfiltered(msg.Data) {
		s.delivered.Add(1)
		return
	}
	s.rejected.Add(1)
}

// Delivered counts packets the receiver accepted.
func (s *Subscriber) Delivered() int64 { return s.delivered.Load() }

// Rejected counts packets the receiver dropped.
func (s *Subscriber) Rejected() int64 { return s.rejected.Load() }

package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NewNATS constructs a publisher writing to "<prefix>.<phase>".
func NewNATS(log *slog.Logger, nc *nats.Conn, prefix string) Publisher {
	if prefix == "" {
		prefix = "turns"
	}
	return &natsPublisher{log: log, nc: nc, prefix: prefix}
}

type natsPublisher struct {
	log    *slog.Logger
	nc     *nats.Conn
	prefix string
}

func (p *natsPublisher) Publish(_ context.Context, ev Event) error {
	if ev.Phase == "" {
		return errors.New("event phase required")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(subjectFor(p.prefix, string(ev.Phase)), body)
}

func (p *natsPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("nats drain failed", "err", err)
		p.nc.Close()
		return err
	}
	return nil
}

func subjectFor(prefix, phase string) string {
	return prefix + "." + phase
}

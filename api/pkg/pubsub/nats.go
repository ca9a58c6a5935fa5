package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/config"
)

type Nats struct {
	srv  *server.Server
	conn *nats.Conn
}

var _ PubSub = &Nats{}

// NewInMemoryNats starts an embedded NATS server and connects to it.
// The server binds the configured host/port so sidecar processes can
// share the bus, but everything in this process talks over the returned
// connection.
func NewInMemoryNats(cfg config.PubSub) (*Nats, error) {
	opts := &server.Options{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		NoSigs:        true,
		JetStream:     cfg.Server.JetStream,
		StoreDir:      cfg.StoreDir,
		MaxPayload:    int32(cfg.Server.MaxPayload),
		Authorization: cfg.Server.Token,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		return nil, fmt.Errorf("failed to start in-memory nats server")
	}

	var connOpts []nats.Option
	if cfg.Server.Token != "" {
		connOpts = append(connOpts, nats.Token(cfg.Server.Token))
	}

	nc, err := nats.Connect(ns.ClientURL(), connOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	log.Info().Str("url", ns.ClientURL()).Msg("Embedded NATS server started")

	return &Nats{srv: ns, conn: nc}, nil
}

func (n *Nats) Publish(ctx context.Context, topic string, payload []byte) error {
	return n.conn.Publish(topic, payload)
}

func (n *Nats) Subscribe(ctx context.Context, topic string, handler func(payload []byte) error) (Subscription, error) {
	sub, err := n.conn.Subscribe(topic, func(msg *nats.Msg) {
		err := handler(msg.Data)
		if err != nil {
			log.Err(err).Str("topic", topic).Msg("error handling message")
		}
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// Close drains the connection and shuts the embedded server down.
func (n *Nats) Close() {
	if err := n.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("failed to drain nats connection")
	}
	n.srv.Shutdown()
}

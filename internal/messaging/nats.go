// Package messaging wraps the NATS Streaming connection used to fan out
// schedule and booking events to the worker.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/stan.go"

	"fitgrid/internal/logger"
)

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
}

// Client is a thin wrapper over a stan.Conn with JSON payloads.
type Client struct {
	conn stan.Conn
}

func Connect(cfg Config) (*Client, error) {
	conn, err := stan.Connect(
		cfg.ClusterID,
		cfg.ClientID,
		stan.NatsURL(cfg.URL),
		stan.ConnectWait(10*time.Second),
		stan.Pings(10, 5),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			logger.Get().Error("nats streaming connection lost", "error", reason)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats streaming: %w", err)
	}

	logger.Get().Info("connected to nats streaming",
		"url", cfg.URL,
		"cluster_id", cfg.ClusterID,
		"client_id", cfg.ClientID)

	return &Client{conn: conn}, nil
}

// Publish marshals payload to JSON and publishes it on subject.
func (c *Client) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

// SubscribeQueue creates a durable queue subscription so worker
// restarts resume where they left off.
func (c *Client) SubscribeQueue(subject, queue string, handler stan.MsgHandler) (stan.Subscription, error) {
	sub, err := c.conn.QueueSubscribe(
		subject,
		queue,
		handler,
		stan.DurableName(queue),
		stan.SetManualAckMode(),
		stan.AckWait(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	return sub, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

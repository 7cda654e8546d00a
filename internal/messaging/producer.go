package messaging

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event describes an entity lifecycle change published after a
// successful mutation.
type Event struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     int       `json:"id"`
	At     time.Time `json:"at"`
}

func NewEvent(entity, action string, id int) Event {
	return Event{Entity: entity, Action: action, ID: id, At: time.Now().UTC()}
}

type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewProducer(url string, subject string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *Producer) SendMessage(value interface{}) error {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("failed to marshal message", "error", err)
		return err
	}

	if err := p.conn.Publish(p.subject, valueBytes); err != nil {
		p.logger.Error("failed to send message to NATS", "error", err)
		return err
	}

	p.logger.Debug("message sent to NATS", "subject", p.subject)
	return nil
}

// Close drains nothing; pending publishes are fire-and-forget.
func (p *Producer) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

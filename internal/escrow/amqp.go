package escrow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
)

// TransferMessage is what the wallet service consumes.
type TransferMessage struct {
	TransferID string           `json:"transfer_id"`
	To         domain.AccountID `json:"to"`
	Amount     domain.Amount    `json:"amount"`
	IssuedAt   time.Time        `json:"issued_at"`
}

// AMQPPublisher hands transfers to an external wallet service through a
// durable exchange. Delivery is persistent; the wallet service owns retries.
type AMQPPublisher struct {
	conn       *amqp.Connection
	exchange   string
	routingKey string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewAMQPPublisher(amqpURL, exchange, routingKey string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, routingKey: routingKey}, nil
}

func (p *AMQPPublisher) Transfer(ctx context.Context, to domain.AccountID, amount domain.Amount) error {
	if amount.IsZero() {
		return nil
	}
	msg := TransferMessage{
		TransferID: uuid.NewString(),
		To:         to,
		Amount:     amount,
		IssuedAt:   requestcontext.Now(ctx).UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}

	// amqp channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.TransferID,
		Body:         body,
		Timestamp:    msg.IssuedAt,
		DeliveryMode: amqp.Persistent,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

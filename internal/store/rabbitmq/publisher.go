package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/mindease/internal/notify"
)

// AlertPublisher queues notification emails for cmd/worker. It implements notify.Sender.
type AlertPublisher struct {
	conn  *amqp.Connection
	mu    sync.Mutex
	ch    *amqp.Channel
	queue string
}

func NewAlertPublisher(url, queue string) (*AlertPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareQueues(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &AlertPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// DeclareQueues declares the alert queue and its dead-letter queue. Publisher
// and worker must agree on the arguments.
func DeclareQueues(ch *amqp.Channel, queue string) error {
	dlq := DeadLetterQueue(queue)

	if _, err := ch.QueueDeclare(
		dlq,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	_, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlq,
		},
	)
	return err
}

func DeadLetterQueue(queue string) string { return queue + ".dlq" }

func (p *AlertPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func EncodeEmail(e notify.Email) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEmail(b []byte) (notify.Email, error) {
	var e notify.Email
	err := json.Unmarshal(b, &e)
	return e, err
}

func (p *AlertPublisher) Send(ctx context.Context, to, subject, body string) error {
	b, err := EncodeEmail(notify.Email{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         b,
			Timestamp:    time.Now(),
		},
	)
}

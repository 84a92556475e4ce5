package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Delivery is the part of a broker message handlers care about.
type Delivery struct {
	RoutingKey string
	MessageID  string
	RequestID  string
	Body       []byte
}

type Handler func(ctx context.Context, d Delivery) error

type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	q        string
	prefetch int
}

// NewConsumer declares the exchange and a durable queue bound to every key in keys
// (comma separated, topic wildcards allowed).
func NewConsumer(url, exchange, queue, keys string, prefetch int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	qd, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := ch.QueueBind(qd.Name, key, exchange, false, nil); err != nil {
			return fail("bind queue "+key, err)
		}
	}
	if prefetch <= 0 {
		prefetch = 50
	}
	return &Consumer{conn: conn, ch: ch, q: qd.Name, prefetch: prefetch}, nil
}

func (c *Consumer) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Consume blocks until ctx is done, feeding deliveries to workers goroutines. It returns
// amqp.ErrClosed if the broker closes the delivery channel first.
func (c *Consumer) Consume(ctx context.Context, workers int, handle Handler) error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("consumer is not initialized")
	}
	if err := c.ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	msgs, err := c.ch.Consume(c.q, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	return serve(ctx, msgs, workers, handle)
}

// serve acks handled deliveries and requeues failed ones. It returns once ctx is done or
// msgs is closed and every worker has exited; the latter is reported as amqp.ErrClosed.
func serve(ctx context.Context, msgs <-chan amqp.Delivery, workers int, handle Handler) error {
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case d, ok := <-msgs:
					if !ok {
						return
					}
					if err := handle(ctx, toDelivery(d)); err != nil {
						_ = d.Nack(false, !d.Redelivered)
						continue
					}
					_ = d.Ack(false)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return amqp.ErrClosed
}

func toDelivery(d amqp.Delivery) Delivery {
	reqID, _ := d.Headers["X-Request-ID"].(string)
	return Delivery{RoutingKey: d.RoutingKey, MessageID: d.MessageId, RequestID: reqID, Body: d.Body}
}

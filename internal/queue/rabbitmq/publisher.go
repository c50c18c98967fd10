// rabbitmq публикует карточки с сайтом в очередь обогащения
// (поиск контактов на домене выполняет отдельный потребитель).
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pribylovaa/go-maps-harvester/internal/config"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

// publishTimeout — предел на публикацию одного сообщения, если ctx его не задаёт.
const publishTimeout = 10 * time.Second

// EnrichTask — сообщение очереди обогащения.
type EnrichTask struct {
	RunID     string `json:"run_id"`
	ListingID string `json:"listing_id"`
	Name      string `json:"name"`
	Website   string `json:"website"`
	Domain    string `json:"domain"`
	Query     string `json:"query"`
}

// Publisher держит соединение и канал AMQP.
type Publisher struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

// NewPublisher подключается к брокеру и объявляет durable topic-обменник.
func NewPublisher(cfg config.RabbitMQConfig) (*Publisher, error) {
	const op = "queue.rabbitmq.NewPublisher"

	if cfg.URL == "" {
		return nil, fmt.Errorf("%s: url is required", op)
	}
	if cfg.RoutingKey == "" {
		return nil, fmt.Errorf("%s: routing key is required", op)
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: channel: %w", op, err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: declare exchange %q: %w", op, cfg.Exchange, err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange, routingKey: cfg.RoutingKey}, nil
}

// PublishEnrichTasks отправляет задачи по одной persistent-публикации на карточку.
// Останавливается на первой ошибке и возвращает число отправленных.
func (p *Publisher) PublishEnrichTasks(ctx context.Context, tasks []EnrichTask) (int, error) {
	const op = "queue.rabbitmq.PublishEnrichTasks"

	if p.ch == nil || p.conn == nil || p.conn.IsClosed() {
		return 0, fmt.Errorf("%s: connection is closed", op)
	}

	lg := log.From(ctx)

	for i, task := range tasks {
		body, err := json.Marshal(task)
		if err != nil {
			return i, fmt.Errorf("%s: marshal %s: %w", op, task.ListingID, err)
		}

		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = p.ch.PublishWithContext(pubCtx, p.exchange, p.routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    task.RunID + ":" + task.ListingID,
		})
		cancel()

		if err != nil {
			return i, fmt.Errorf("%s: publish %s: %w", op, task.ListingID, err)
		}
	}

	lg.Debug("enrich_published",
		slog.String("op", op),
		slog.String("routing_key", p.routingKey),
		slog.Int("count", len(tasks)),
	)

	return len(tasks), nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	var firstErr error

	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			firstErr = err
		}
		p.ch = nil
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}

	return firstErr
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-maps-harvester/internal/config"
)

// Интеграционные тесты публикации поверх реального RabbitMQ.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/queue/rabbitmq -v -race -count=1

func startRabbit(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5672/tcp")

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestIntegration_PublishEnrichTasks(t *testing.T) {
	url := startRabbit(t)
	cfg := config.RabbitMQConfig{URL: url, Exchange: "harvester", RoutingKey: "listing.enrich"}

	p, err := NewPublisher(cfg)
	require.NoError(t, err)
	defer p.Close()

	// потребитель: очередь, привязанная к routing key.
	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	tasks := []EnrichTask{
		{RunID: "r1", ListingID: "l1", Name: "Cafe", Website: "https://cafe.example", Domain: "cafe.example", Query: "coffee"},
		{RunID: "r1", ListingID: "l2", Name: "Bar", Website: "https://bar.example", Domain: "bar.example", Query: "coffee"},
	}

	n, err := p.PublishEnrichTasks(context.Background(), tasks)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	for _, want := range tasks {
		select {
		case d := <-deliveries:
			require.Equal(t, "application/json", d.ContentType)
			require.Equal(t, amqp.Persistent, d.DeliveryMode)

			var got EnrichTask
			require.NoError(t, json.Unmarshal(d.Body, &got))
			require.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatal("message was not delivered")
		}
	}
}

func TestNewPublisher_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewPublisher(config.RabbitMQConfig{})
	require.ErrorContains(t, err, "url is required")

	_, err = NewPublisher(config.RabbitMQConfig{URL: "amqp://localhost/"})
	require.ErrorContains(t, err, "routing key is required")
}

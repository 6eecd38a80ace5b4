package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"itnfit/pkg/config"
	"itnfit/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	PointsExchange = "points"
	EarnQueueName  = "points_earn_queue"
	EarnRoutingKey = "points.earn"
)

// EarnTask asks the points service to credit a member. Reference identifies
// the triggering action (an attendance record, a workout log) so that a
// redelivered task does not credit twice.
type EarnTask struct {
	UserID      string    `json:"user_id"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
	Reference   string    `json:"reference,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		PointsExchange, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		EarnQueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		EarnQueueName,  // queue name
		EarnRoutingKey, // routing key
		PointsExchange, // exchange
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	// one unacked task at a time per consumer keeps earn order per queue
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishEarnTask publishes a persistent earn task.
func (c *Client) PublishEarnTask(task EarnTask) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = c.channel.Publish(
		PointsExchange, // exchange
		EarnRoutingKey, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    task.CreatedAt,
			MessageId:    task.Reference,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish earn task to exchange=%s, routing_key=%s: %v", PointsExchange, EarnRoutingKey, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published earn task user=%s amount=%d reference=%s", task.UserID, task.Amount, task.Reference)
	return nil
}

// requeueDelay keeps a failing handler from spinning on the same message.
const requeueDelay = time.Second

type settlement int

const (
	settleAck settlement = iota
	settleRequeue
	settleDrop
)

// settleEarnTask decides what happens to one delivery. Handler errors always
// requeue: earns are keyed by reference, so a retry never credits twice.
func settleEarnTask(body []byte, handler func(task EarnTask) error) (settlement, error) {
	task, err := DecodeEarnTask(body)
	if err != nil {
		return settleDrop, err
	}
	if err := handler(task); err != nil {
		return settleRequeue, err
	}
	return settleAck, nil
}

// ConsumeEarnTasks delivers earn tasks to handler until the channel closes.
// Malformed messages are dropped; handler errors requeue the message.
func (c *Client) ConsumeEarnTasks(handler func(task EarnTask) error) error {
	msgs, err := c.channel.Consume(
		EarnQueueName, // queue
		"",            // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", EarnQueueName)

	go func() {
		for msg := range msgs {
			switch outcome, err := settleEarnTask(msg.Body, handler); outcome {
			case settleDrop:
				c.logger.Error("[RABBITMQ] Dropping malformed earn task: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false)
			case settleRequeue:
				c.logger.Error("[RABBITMQ] Earn task failed, requeueing (redelivered=%t): %v", msg.Redelivered, err)
				time.Sleep(requeueDelay)
				msg.Nack(false, true)
			default:
				msg.Ack(false)
			}
		}
		c.logger.Warn("[RABBITMQ] Consumer channel closed for queue: %s", EarnQueueName)
	}()

	return nil
}

func DecodeEarnTask(body []byte) (EarnTask, error) {
	var task EarnTask
	if err := json.Unmarshal(body, &task); err != nil {
		return EarnTask{}, fmt.Errorf("failed to unmarshal earn task: %w", err)
	}
	if task.UserID == "" {
		return EarnTask{}, fmt.Errorf("earn task has no user_id")
	}
	if task.Amount <= 0 {
		return EarnTask{}, fmt.Errorf("earn task amount must be positive, got %d", task.Amount)
	}
	return task, nil
}

// GetQueueLength returns the number of messages in the earn queue
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(EarnQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}

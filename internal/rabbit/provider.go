package rabbit

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/streadway/amqp"
)

var ErrNotConnected = errors.New("rabbit provider is not connected")

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Queue    string
}

// Provider publishes messages to a single queue through the default exchange.
type Provider struct {
	conn       *amqp.Connection
	queue      amqp.Queue
	channel    *amqp.Channel
	connString string
	queueName  string
}

func New(config Config) *Provider {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(config.User, config.Password),
		Host:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Path:   "/",
	}
	return &Provider{
		connString: u.String(),
		queueName:  config.Queue,
	}
}

func (r *Provider) Connect() error {
	var err error
	r.conn, err = amqp.Dial(r.connString)
	if err != nil {
		return fmt.Errorf("failed to dial rabbit: %w", err)
	}

	r.channel, err = r.conn.Channel()
	if err != nil {
		r.reset()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	r.queue, err = r.channel.QueueDeclare(
		r.queueName,
		false, // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		r.reset()
		return fmt.Errorf("failed to declare queue %q: %w", r.queueName, err)
	}
	return nil
}

// reset drops a half-open connection so Publish reports ErrNotConnected.
func (r *Provider) reset() {
	if r.conn != nil {
		r.conn.Close()
	}
	r.conn = nil
	r.channel = nil
	r.queue = amqp.Queue{}
}

func (r *Provider) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

func (r *Provider) Publish(body []byte) error {
	if r.channel == nil {
		return ErrNotConnected
	}
	return r.channel.Publish(
		"",           // exchange
		r.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
}

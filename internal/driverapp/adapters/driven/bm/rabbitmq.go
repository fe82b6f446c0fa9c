// Package bm implements the realtime channel over RabbitMQ for
// deployments that push dispatch events through the message broker
// instead of a websocket.
package bm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gowrishetty09/bal-driver-sub001/internal/config"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/adapters/driven/realtime"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/realtimedto"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
	"github.com/gowrishetty09/bal-driver-sub001/internal/mylogger"
)

const (
	dispatchExchangeName = "dispatch_topic" // topic
	reconnInterval       = 5                // seconds
)

type RabbitMQ struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      config.RabbitMqconfig
	driverID string
	log      mylogger.Logger
	emitter  *realtime.Emitter

	mu           sync.Mutex
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
}

var _ ports.RealtimeChannel = (*RabbitMQ)(nil)

func New(ctx context.Context, rabbitmqCfg config.RabbitMqconfig, driverID string, log mylogger.Logger) (*RabbitMQ, error) {
	ctx, cancel := context.WithCancel(ctx)
	r := &RabbitMQ{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      rabbitmqCfg,
		driverID: driverID,
		log:      log,
		emitter:  realtime.NewEmitter(),
	}
	if err := r.connect(); err != nil {
		cancel()
		return nil, fmt.Errorf("rabbit connect: %w", err)
	}
	return r, nil
}

func (r *RabbitMQ) Subscribe(event string, h ports.EventHandler) func() {
	return r.emitter.Subscribe(event, h)
}

// Start begins consuming dispatch events for this driver and emits the
// first "connect".
func (r *RabbitMQ) Start() error {
	if err := r.consume(); err != nil {
		return err
	}
	r.emitter.Emit(realtimedto.EventConnect, nil)
	return nil
}

func (r *RabbitMQ) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil || r.conn.IsClosed() {
		return false
	}
	if r.ch == nil || r.ch.IsClosed() {
		return false
	}
	return true
}

func (r *RabbitMQ) Close() error {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}
	return nil
}

func (r *RabbitMQ) connect() error {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		r.cfg.User, r.cfg.Password, r.cfg.Host, r.cfg.Port, r.cfg.VHost,
	)
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(dispatchExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	r.mu.Lock()
	r.conn = conn
	r.ch = ch
	r.mu.Unlock()
	return nil
}

// consume binds this driver's queue to the dispatch exchange and pumps
// deliveries into the emitter until the channel dies.
func (r *RabbitMQ) consume() error {
	if !r.IsAlive() {
		return errors.New("amqp closed")
	}

	queueName := "driver.jobs." + r.driverID
	if _, err := r.ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, key := range []string{
		"job.assigned." + r.driverID,
		"job.status." + r.driverID,
	} {
		if err := r.ch.QueueBind(queueName, key, dispatchExchangeName, false, nil); err != nil {
			return fmt.Errorf("queue bind: %w", err)
		}
	}

	deliveries, err := r.ch.Consume(queueName, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-r.ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					r.emitter.Emit(realtimedto.EventDisconnect, nil)
					r.reconnect()
					return
				}
				r.dispatch(d)
			}
		}
	}()
	return nil
}

func (r *RabbitMQ) dispatch(d amqp.Delivery) {
	var event realtimedto.Event
	if err := json.Unmarshal(d.Body, &event); err != nil || event.Type == "" {
		// plain payloads carry no envelope; the routing key names the event
		event = realtimedto.Event{Type: eventFromRoutingKey(d.RoutingKey), Data: d.Body}
	}
	if event.Type == "" {
		r.log.Action("mb_consume").Debug("delivery without event name dropped")
		return
	}
	r.emitter.Emit(realtimedto.Canonical(event.Type), event.Data)
}

func eventFromRoutingKey(key string) string {
	switch {
	case strings.HasPrefix(key, "job.assigned."):
		return realtimedto.EventJobAssigned
	case strings.HasPrefix(key, "job.status."):
		return realtimedto.EventJobStatusUpdated
	}
	return ""
}

func (r *RabbitMQ) reconnect() {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	t := time.NewTicker(time.Duration(reconnInterval) * time.Second)
	l := r.log.Action("mb_reconnecting")

	for {
		select {
		case <-t.C:
			if err := r.connect(); err != nil {
				l.Info("reconnect failed")
				continue
			}
			if err := r.consume(); err != nil {
				l.Info("reconsume failed")
				continue
			}
			t.Stop()
			l.Action("mb_reconnection_completed").Info("reconnected")
			r.mu.Lock()
			r.reconnecting = false
			r.mu.Unlock()
			r.emitter.Emit(realtimedto.EventConnect, nil)
			return
		case <-r.ctx.Done():
			t.Stop()
			return
		}
	}
}

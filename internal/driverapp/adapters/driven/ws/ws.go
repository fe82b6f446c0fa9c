// Package ws implements the realtime channel over a websocket connection
// to the dispatch backend.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/adapters/driven/realtime"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/realtimedto"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
	"github.com/gowrishetty09/bal-driver-sub001/internal/mylogger"
)

const reconnInterval = 5 * time.Second

// Channel maintains a websocket connection to the backend, authenticates
// it, decodes the {type,data} event envelope and fans events out to
// subscribers. A dropped connection emits "disconnect", is redialed until
// it comes back and emits "connect" again; the reconciliation layer builds
// its resync protocol on those two events.
type Channel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	url     string
	auth    ports.AuthProvider
	log     mylogger.Logger
	emitter *realtime.Emitter

	mu   sync.Mutex
	conn *websocket.Conn
}

var _ ports.RealtimeChannel = (*Channel)(nil)

func New(ctx context.Context, url string, auth ports.AuthProvider, log mylogger.Logger) *Channel {
	ctx, cancel := context.WithCancel(ctx)
	return &Channel{
		ctx:     ctx,
		cancel:  cancel,
		url:     url,
		auth:    auth,
		log:     log,
		emitter: realtime.NewEmitter(),
	}
}

// Start launches the dial/read/redial loop.
func (c *Channel) Start() {
	go c.run()
}

func (c *Channel) Subscribe(event string, h ports.EventHandler) func() {
	return c.emitter.Subscribe(event, h)
}

func (c *Channel) Close() error {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Channel) run() {
	log := c.log.Action("ws_channel")
	for {
		if c.ctx.Err() != nil {
			return
		}

		conn, err := c.connect()
		if err != nil {
			log.Warn("dial failed, retrying", "reason", err.Error())
			select {
			case <-time.After(reconnInterval):
				continue
			case <-c.ctx.Done():
				return
			}
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		log.Info("connected", "url", c.url)
		c.emitter.Emit(realtimedto.EventConnect, nil)

		c.readLoop(conn)
		conn.Close()

		if c.ctx.Err() != nil {
			return
		}
		log.Warn("connection lost")
		c.emitter.Emit(realtimedto.EventDisconnect, nil)

		select {
		case <-time.After(reconnInterval):
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Channel) connect() (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to websocket: %w", err)
	}

	token, err := c.auth.Token()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetching credential: %w", err)
	}

	data, err := json.Marshal(realtimedto.AuthMessage{Token: token})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("marshaling auth message: %w", err)
	}
	auth := realtimedto.Event{Type: "auth", Data: data}
	authBytes, _ := json.Marshal(auth)
	if err := conn.WriteMessage(websocket.TextMessage, authBytes); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending auth message: %w", err)
	}
	return conn, nil
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	log := c.log.Action("ws_read")
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "reason", err.Error())
			}
			return
		}

		var event realtimedto.Event
		if err := json.Unmarshal(payload, &event); err != nil || event.Type == "" {
			log.Debug("unparseable frame dropped")
			continue
		}
		c.emitter.Emit(realtimedto.Canonical(event.Type), event.Data)
	}
}

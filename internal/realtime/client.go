package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 256
	readLimit    = 1 << 20
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // rooms are addressed by code only; CORS is enforced on the HTTP API
	},
}

// WSMessage is the WebSocket message envelope. Ack is set by a client that
// wants a reply and echoed on the "ack" message answering it.
type WSMessage struct {
	Event string          `json:"event"`
	Ack   string          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection.
type Client struct {
	ID          string
	ConnectedAt time.Time
	hub         *Hub
	dispatcher  *Dispatcher
	conn        *websocket.Conn
	send        chan WSMessage
	done        chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(hub *Hub, dispatcher *Dispatcher, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:          uuid.New().String(),
			ConnectedAt: time.Now(),
			hub:         hub,
			dispatcher:  dispatcher,
			conn:        conn,
			send:        make(chan WSMessage, sendBuffer),
			done:        make(chan struct{}),
			logger:      logger,
		}
		hub.Register(client)
		client.enqueue(newMessage(EventConnected, map[string]string{"id": client.ID}))
		go client.writePump()
		client.readPump()
	}
}

// enqueue hands msg to the write loop. A full buffer drops the message.
func (c *Client) enqueue(msg WSMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("send buffer full, dropping message",
			zap.String("client_id", c.ID),
			zap.String("event", msg.Event),
		)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		c.dispatcher.Disconnect(c.ID)
		c.hub.Unregister(c)
		c.close()
		_ = c.conn.Close()
		c.logger.Debug("connection closed",
			zap.String("client_id", c.ID),
			zap.Duration("duration", time.Since(c.ConnectedAt)),
		)
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}
		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Debug("malformed envelope", zap.String("client_id", c.ID), zap.Error(err))
			continue
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		reply, ok := c.dispatcher.Handle(c.ID, msg)
		if !ok || msg.Ack == "" {
			continue
		}
		data, err := json.Marshal(reply)
		if err != nil {
			c.logger.Error("ack marshal failed", zap.String("event", msg.Event), zap.Error(err))
			continue
		}
		c.enqueue(WSMessage{Event: EventAck, Ack: msg.Ack, Data: data})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newMessage(name string, payload any) WSMessage {
	data, _ := json.Marshal(payload)
	return WSMessage{Event: name, Data: data}
}

package websocket

import (
	"encoding/json"
	"time"

	"connect-chat/internal/chat"
	"connect-chat/internal/models"
	"connect-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Client bridges one websocket connection to the coordinator. Inbound
// frames are decoded and dispatched as commands; outbound events go
// through a buffered channel so the coordinator's fan-out never blocks.
type Client struct {
	id    string
	conn  *websocket.Conn
	send  chan []byte
	coord *chat.Coordinator
}

func NewClient(conn *websocket.Conn, coord *chat.Coordinator) *Client {
	return &Client{
		id:    uuid.NewString(),
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		coord: coord,
	}
}

func (c *Client) ID() string { return c.id }

// Send implements chat.Conn. It never blocks: when the buffer is full
// the payload is dropped and false is returned.
func (c *Client) Send(event string, data any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("marshal %s payload: %v", event, err)
		return false
	}
	frame, err := json.Marshal(models.Envelope{Event: event, Data: raw})
	if err != nil {
		logger.Error("marshal %s envelope: %v", event, err)
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.coord.Leave(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read error on %s: %v", c.id, err)
			}
			break
		}
		c.dispatch(raw)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Error("websocket write error on %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

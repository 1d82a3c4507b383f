package websocket

import (
	"encoding/json"
	"fmt"

	"connect-chat/internal/models"
	"connect-chat/pkg/logger"
)

// dispatch routes one inbound frame to the matching coordinator
// operation and acknowledges the result to the originator. Typing is
// the one fire-and-forget event with no ack.
func (c *Client) dispatch(raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Warn("discarding malformed frame from %s: %v", c.id, err)
		return
	}

	switch env.Event {
	case models.EventJoin:
		var p models.JoinPayload
		c.ack(env.Seq, c.unmarshalThen(env.Data, &p, func() error {
			return c.coord.Join(c, p.Username, p.RoomName)
		}))

	case models.EventSendMessage:
		var p models.SendMessagePayload
		c.ack(env.Seq, c.unmarshalThen(env.Data, &p, func() error {
			_, err := c.coord.Send(c.id, p.Message, p.ThreadID)
			return err
		}))

	case models.EventDeleteMessage:
		var p models.MessageRefPayload
		c.ack(env.Seq, c.unmarshalThen(env.Data, &p, func() error {
			return c.coord.Delete(c.id, p.MessageID)
		}))

	case models.EventPinMessage:
		var p models.MessageRefPayload
		c.ack(env.Seq, c.unmarshalThen(env.Data, &p, func() error {
			_, err := c.coord.Pin(c.id, p.MessageID)
			return err
		}))

	case models.EventUnpinMessage:
		var p models.MessageRefPayload
		c.ack(env.Seq, c.unmarshalThen(env.Data, &p, func() error {
			return c.coord.Unpin(c.id, p.MessageID)
		}))

	case models.EventCreateRoom:
		var p models.CreateRoomPayload
		c.ack(env.Seq, c.unmarshalThen(env.Data, &p, func() error {
			return c.coord.CreateRoom(p.RoomName)
		}))

	case models.EventUpdateStatus:
		var p models.UpdateStatusPayload
		c.ack(env.Seq, c.unmarshalThen(env.Data, &p, func() error {
			return c.coord.SetStatus(c.id, p.Status)
		}))

	case models.EventTyping:
		c.coord.Typing(c.id)

	default:
		c.ack(env.Seq, fmt.Errorf("unknown event: %s", env.Event))
	}
}

// unmarshalThen decodes the payload into dst and, on success, runs op.
func (c *Client) unmarshalThen(data json.RawMessage, dst any, op func() error) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, dst); err != nil {
			return err
		}
	}
	return op()
}

func (c *Client) ack(seq int64, err error) {
	result := models.Ack{Seq: seq, Success: err == nil}
	if err != nil {
		result.Error = err.Error()
	}
	c.Send(models.EventAck, result)
}

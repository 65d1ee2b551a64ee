package publishers

import (
	"context"
	"fmt"
	"io"
)

// queuePublisher adapts a sender to the Publisher interface.
type queuePublisher struct {
	id     string
	typ    string
	sender sender
	log    Logger
}

func (q *queuePublisher) ID() string   { return q.id }
func (q *queuePublisher) Type() string { return q.typ }

func (q *queuePublisher) Publish(ctx context.Context, evt Event) error {
	if err := q.sender.Send(ctx, evt); err != nil {
		q.log.ErrorObj("publisher send failed", "publisher_error", map[string]any{
			"publisher_id": q.id,
			"type":         q.typ,
			"event_type":   evt.Type,
			"error":        err.Error(),
		})
		return err
	}
	q.log.DebugObj("publisher delivered event", "publisher_delivery", map[string]any{
		"publisher_id": q.id,
		"type":         q.typ,
		"event_type":   evt.Type,
		"device_id":    evt.DeviceID,
	})
	return nil
}

// Close releases the sender's resources when it holds any.
func (q *queuePublisher) Close() error {
	if c, ok := q.sender.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close %s publisher %q: %w", q.typ, q.id, err)
		}
	}
	return nil
}

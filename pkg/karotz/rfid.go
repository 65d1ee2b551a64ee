package karotz

import (
	"context"
	"strings"
)

// RFIDList returns the known tag ids, or an empty list on failure.
func (c *Client) RFIDList(ctx context.Context) ([]string, error) {
	res, ok, err := c.result(ctx, newRequest(cmdRFIDList))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return entryIDs(res.Tags), nil
}

// RFIDStartRecord puts the reader in learning mode.
func (c *Client) RFIDStartRecord(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdRFIDStartRecord))
}

// RFIDStopRecord leaves learning mode.
func (c *Client) RFIDStopRecord(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdRFIDStopRecord))
}

// RFIDDelete forgets a tag.
func (c *Client) RFIDDelete(ctx context.Context, tag string) (bool, error) {
	return c.tagCommand(ctx, cmdRFIDDelete, tag)
}

// RFIDUnassign removes the action bound to a tag.
func (c *Client) RFIDUnassign(ctx context.Context, tag string) (bool, error) {
	return c.tagCommand(ctx, cmdRFIDUnassign, tag)
}

func (c *Client) tagCommand(ctx context.Context, cmd command, tag string) (bool, error) {
	if strings.TrimSpace(tag) == "" {
		return false, invalidArgument("rfid tag is empty")
	}
	res, ok, err := c.result(ctx, newRequest(cmd).with("tag", tag))
	if err != nil {
		return false, err
	}
	if !ok && res.Msg != "" {
		c.log.WarnObj("karotz rfid command rejected", "karotz_rfid", map[string]any{
			"host":    c.host.String(),
			"command": cmd.name,
			"tag":     tag,
			"msg":     res.Msg,
		})
	}
	return ok, nil
}

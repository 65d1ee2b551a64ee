package karotz

import (
	"context"
	"strings"
)

// SoundList returns the ids of the stored sounds in device order.
func (c *Client) SoundList(ctx context.Context) ([]string, error) {
	res, _, err := c.result(ctx, newRequest(cmdSoundList))
	if err != nil {
		return nil, err
	}
	return entryIDs(res.Sounds), nil
}

// PlaySoundByID plays a stored sound.
func (c *Client) PlaySoundByID(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, invalidArgument("sound id is empty")
	}
	return c.succeeded(ctx, newRequest(cmdSound).with("id", id))
}

// PlaySoundByURL streams a sound from soundURL.
func (c *Client) PlaySoundByURL(ctx context.Context, soundURL string) (bool, error) {
	if strings.TrimSpace(soundURL) == "" {
		return false, invalidArgument("sound url is empty")
	}
	return c.succeeded(ctx, newRequest(cmdSound).with("url", soundURL))
}

// QuitSound stops the sound being played.
func (c *Client) QuitSound(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdSoundControl).with("cmd", "quit"))
}

// PauseSound pauses the sound being played.
func (c *Client) PauseSound(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdSoundControl).with("cmd", "pause"))
}

// StartSqueezebox starts the squeezebox player.
func (c *Client) StartSqueezebox(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdSqueezebox).with("cmd", "start"))
}

// StopSqueezebox stops the squeezebox player.
func (c *Client) StopSqueezebox(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdSqueezebox).with("cmd", "stop"))
}

package karotz

import "context"

// FreeKarotzSpace returns the used space of the internal storage in percent.
func (c *Client) FreeKarotzSpace(ctx context.Context) (int, error) {
	res, _, err := c.result(ctx, newRequest(cmdGetFreeSpace))
	if err != nil {
		return 0, err
	}
	return res.KarotzPercentUsedSpace.Value(), nil
}

// FreeUSBSpace returns the used space of the USB stick in percent, or -1 when no
// stick is plugged in.
func (c *Client) FreeUSBSpace(ctx context.Context) (int, error) {
	res, _, err := c.result(ctx, newRequest(cmdGetFreeSpace))
	if err != nil {
		return 0, err
	}
	return res.USBPercentUsedSpace.Or(-1), nil
}

// Wakeup wakes the device and reports whether it woke silently.
func (c *Client) Wakeup(ctx context.Context, silent bool) (bool, error) {
	res, _, err := c.result(ctx, newRequest(cmdWakeup).withBool("silent", silent))
	if err != nil {
		return false, err
	}
	return res.Silent.Is(1), nil
}

// Sleep puts the device to sleep. It returns false only when the device answers
// that it was already sleeping (return == 1).
func (c *Client) Sleep(ctx context.Context) (bool, error) {
	res, _, err := c.result(ctx, newRequest(cmdSleep))
	if err != nil {
		return false, err
	}
	return !res.Return.Is(1), nil
}

// DisplayCache returns the number of cached TTS entries, or -1 on failure.
func (c *Client) DisplayCache(ctx context.Context) (int, error) {
	res, ok, err := c.result(ctx, newRequest(cmdDisplayCache))
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, nil
	}
	return res.Count.Value(), nil
}

// ClearCache empties the TTS cache.
func (c *Client) ClearCache(ctx context.Context) (bool, error) {
	res, ok, err := c.result(ctx, newRequest(cmdClearCache))
	if err != nil {
		return false, err
	}
	if res.Msg != "" {
		c.log.InfoObj("karotz cache cleared", "karotz_cache", map[string]any{
			"host": c.host.String(),
			"msg":  res.Msg,
		})
	}
	return ok, nil
}

// Status returns the device summary.
func (c *Client) Status(ctx context.Context) (DeviceStatus, error) {
	res, _, err := c.result(ctx, newRequest(cmdStatus))
	if err != nil {
		return DeviceStatus{}, err
	}
	return res.DeviceStatus, nil
}

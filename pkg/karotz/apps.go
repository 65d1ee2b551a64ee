package karotz

import "context"

// Mood plays mood id (>= 1) and returns the mood the device played, or -1 on
// failure.
func (c *Client) Mood(ctx context.Context, id int) (int, error) {
	if id < 1 {
		return -1, invalidArgument("mood id %d, must be >= 1", id)
	}
	res, ok, err := c.result(ctx, newRequest(cmdMoods).withInt("id", id))
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, nil
	}
	return res.Moods.Or(id), nil
}

// Clock announces the time for hour (0-23).
func (c *Client) Clock(ctx context.Context, hour int) (bool, error) {
	if hour < 0 || hour > 23 {
		return false, invalidArgument("hour %d, must be 0-23", hour)
	}
	return c.succeeded(ctx, newRequest(cmdClock).withInt("hour", hour))
}

package karotz

import "context"

const (
	// MinEarPosition is the lowest ear angle step.
	MinEarPosition = 0
	// MaxEarPosition is the highest ear angle step.
	MaxEarPosition = 17
)

// EarsReset moves both ears back to their rest position.
func (c *Client) EarsReset(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdEarsReset))
}

// EarsRandom moves both ears to random positions.
func (c *Client) EarsRandom(ctx context.Context) (bool, error) {
	res, ok, err := c.result(ctx, newRequest(cmdEarsRandom))
	if err != nil {
		return false, err
	}
	if ok {
		c.logEars("karotz ears moved randomly", res)
	}
	return ok, nil
}

// EarsMode enables or disables the ears and returns the disabled state the device
// reports. It returns false when the device rejected the command.
func (c *Client) EarsMode(ctx context.Context, disabled bool) (bool, error) {
	res, ok, err := c.result(ctx, newRequest(cmdEarsMode).withBool("disable", disabled))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return res.Disabled.Is(1), nil
}

// EarsPosition moves the ears to the given steps, each in [0,17]. With reset the
// ears are reset before moving.
func (c *Client) EarsPosition(ctx context.Context, left, right int, reset bool) (bool, error) {
	if err := validateEar("left", left); err != nil {
		return false, err
	}
	if err := validateEar("right", right); err != nil {
		return false, err
	}

	req := newRequest(cmdEars).
		withInt("left", left).
		withInt("right", right).
		withBool("noreset", !reset)
	res, ok, err := c.result(ctx, req)
	if err != nil {
		return false, err
	}
	if ok {
		c.logEars("karotz ears positioned", res)
	}
	return ok, nil
}

func (c *Client) logEars(msg string, res *Result) {
	c.log.InfoObj(msg, "karotz_ears", map[string]any{
		"host":  c.host.String(),
		"left":  res.Left.String(),
		"right": res.Right.String(),
	})
}

func validateEar(name string, pos int) error {
	if pos < MinEarPosition || pos > MaxEarPosition {
		return invalidArgument("%s ear position %d, must be %d-%d", name, pos, MinEarPosition, MaxEarPosition)
	}
	return nil
}

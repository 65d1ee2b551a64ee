package karotz

import (
	"context"
	"regexp"
)

var colorRe = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// LEDColor sets the belly LED to color (rrggbb). With pulse the LED fades between
// color and color2 at the given speed; color2 and speed are ignored otherwise.
func (c *Client) LEDColor(ctx context.Context, color string, pulse bool, speed int, color2 string) (bool, error) {
	if err := validateColor("color", color); err != nil {
		return false, err
	}
	req := newRequest(cmdLEDs).with("color", color)
	if pulse {
		if speed < 0 {
			return false, invalidArgument("speed %d, must be >= 0", speed)
		}
		if err := validateColor("color2", color2); err != nil {
			return false, err
		}
		req = req.with("pulse", "1").withInt("speed", speed).with("color2", color2)
	}

	res, ok, err := c.result(ctx, req)
	if err != nil {
		return false, err
	}
	if ok {
		c.log.DebugObj("karotz led set", "karotz_led", map[string]any{
			"host":            c.host.String(),
			"color":           res.Color,
			"secondary_color": res.SecondaryColor,
			"pulse":           res.Pulse.String(),
			"speed":           res.Speed.String(),
		})
	}
	return ok, nil
}

// ValidColor reports whether s is a six digit hex color.
func ValidColor(s string) bool { return colorRe.MatchString(s) }

func validateColor(name, value string) error {
	if !ValidColor(value) {
		return invalidArgument("%s %q must be rrggbb (0-9,a-f)", name, value)
	}
	return nil
}

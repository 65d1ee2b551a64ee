package monitor

import (
	"strings"

	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
	"github.com/openkarotz-hq/karotz-go/pkg/publishers"
)

// stateFromStatus reduces a status report to the fields the watcher tracks.
func stateFromStatus(s karotz.DeviceStatus) publishers.DeviceState {
	state := publishers.DeviceState{
		Sleeping:     s.Sleeping(),
		EarsDisabled: s.EarsDisabled.Is(1),
		LEDColor:     strings.ToUpper(strings.TrimSpace(s.LEDColor.String())),
		LEDPulse:     s.LEDPulse.Is(1),
	}
	if s.Version.Valid() {
		state.Version = s.Version.String()
	}
	return state
}

// diffState lists the tracked fields that differ between two observations.
func diffState(prev, next publishers.DeviceState) []string {
	var changed []string
	if prev.Sleeping != next.Sleeping {
		changed = append(changed, "sleeping")
	}
	if prev.EarsDisabled != next.EarsDisabled {
		changed = append(changed, "ears_disabled")
	}
	if prev.LEDColor != next.LEDColor {
		changed = append(changed, "led_color")
	}
	if prev.LEDPulse != next.LEDPulse {
		changed = append(changed, "led_pulse")
	}
	return changed
}

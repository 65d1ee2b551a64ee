package karotz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entry names a stored sound, snapshot or RFID tag.
type Entry struct {
	ID string `json:"id"`
}

// UnmarshalJSON accepts both {"id": "..."} objects and bare strings.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.ID = strings.TrimSpace(s)
		return nil
	}
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode entry: %w", err)
	}
	e.ID = strings.TrimSpace(p.ID)
	return nil
}

func entryIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// DeviceStatus is the summary reported by the status command. The free space
// percentages are shared with get_free_space.
type DeviceStatus struct {
	Version                Int  `json:"version"`
	EarsDisabled           Int  `json:"ears_disabled"`
	Sleep                  Int  `json:"sleep"`
	SleepTime              Int  `json:"sleep_time"`
	LEDColor               Text `json:"led_color,omitempty"`
	LEDPulse               Int  `json:"led_pulse"`
	TTSCacheSize           Int  `json:"tts_cache_size"`
	USBFreeSpace           Text `json:"usb_free_space,omitempty"`
	KarotzFreeSpace        Text `json:"karotz_free_space,omitempty"`
	EthMAC                 Text `json:"eth_mac,omitempty"`
	WlanMAC                Text `json:"wlan_mac,omitempty"`
	NbTags                 Int  `json:"nb_tags"`
	NbMoods                Int  `json:"nb_moods"`
	NbSounds               Int  `json:"nb_sounds"`
	NbStories              Int  `json:"nb_stories"`
	KarotzPercentUsedSpace Int  `json:"karotz_percent_used_space"`
	USBPercentUsedSpace    Int  `json:"usb_percent_used_space"`
	DataDir                Text `json:"data_dir,omitempty"`
}

// Sleeping reports whether the device is asleep.
func (s DeviceStatus) Sleeping() bool { return s.Sleep.Is(1) }

// Result is the response record of every command that signals success with a
// numeric "return" field equal to 0. Each command fills only its own fields.
type Result struct {
	Return Int    `json:"return"`
	Msg    string `json:"msg,omitempty"`

	// wakeup, snapshot
	Silent Int `json:"silent"`

	// leds
	Color          Text `json:"color,omitempty"`
	SecondaryColor Text `json:"secondary_color,omitempty"`
	Pulse          Int  `json:"pulse"`
	Speed          Text `json:"speed,omitempty"`
	NoMemory       Int  `json:"no_memory"`

	// ears, ears_random, ears_mode
	Left     Int `json:"left"`
	Right    Int `json:"right"`
	Disabled Int `json:"disabled"`

	// display_cache
	Count Int `json:"count"`

	// sound_list, snapshot_list, rfid_list
	Sounds    []Entry `json:"sounds,omitempty"`
	Snapshots []Entry `json:"snapshots,omitempty"`
	Tags      []Entry `json:"tags,omitempty"`

	// sound
	ID  string `json:"id,omitempty"`
	URL string `json:"url,omitempty"`

	// apps/moods, apps/clock
	Moods Int `json:"moods"`
	Hour  Int `json:"hour"`

	// status, get_free_space
	DeviceStatus
}

func (r *Result) succeeded(rule successRule) bool {
	switch rule {
	case returnZero:
		return r.Return.Is(0)
	case returnIgnored:
		return true
	default:
		return false
	}
}

// TTSResult is the response record of the tts command, which reports success
// with a boolean "return" field.
type TTSResult struct {
	Return        Flag   `json:"return"`
	Played        Flag   `json:"played"`
	Cache         Flag   `json:"cache"`
	VoiceLanguage string `json:"voicelanguage,omitempty"`
	VoiceGender   string `json:"voicegender,omitempty"`
	ID            string `json:"id,omitempty"`
}

func (r *TTSResult) succeeded(rule successRule) bool {
	if rule != returnTrue {
		return false
	}
	return r.Return.Value()
}

// outcome is a decoded response that can judge itself against a success rule.
type outcome interface {
	succeeded(rule successRule) bool
}

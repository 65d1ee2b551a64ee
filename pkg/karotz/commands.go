package karotz

import (
	"net/url"
	"strconv"
	"strings"
)

// successRule says how a command reports success. The device mixes conventions,
// so the rule is recorded per command rather than inferred.
type successRule int

const (
	// returnZero: numeric "return" field equal to 0.
	returnZero successRule = iota
	// returnTrue: boolean "return" field equal to true.
	returnTrue
	// returnIgnored: the command is a query whose payload is the answer.
	returnIgnored
)

func (r successRule) String() string {
	switch r {
	case returnZero:
		return "return==0"
	case returnTrue:
		return "return==true"
	case returnIgnored:
		return "payload"
	default:
		return "unknown"
	}
}

// command describes one CGI endpoint.
type command struct {
	name string
	path string
	rule successRule
}

var (
	cmdGetFreeSpace    = command{name: "get_free_space", path: "get_free_space", rule: returnIgnored}
	cmdSoundList       = command{name: "sound_list", path: "sound_list", rule: returnIgnored}
	cmdWakeup          = command{name: "wakeup", path: "wakeup", rule: returnIgnored}
	cmdSleep           = command{name: "sleep", path: "sleep", rule: returnZero}
	cmdEarsReset       = command{name: "ears_reset", path: "ears_reset", rule: returnZero}
	cmdEarsRandom      = command{name: "ears_random", path: "ears_random", rule: returnZero}
	cmdEarsMode        = command{name: "ears_mode", path: "ears_mode", rule: returnZero}
	cmdEars            = command{name: "ears", path: "ears", rule: returnZero}
	cmdLEDs            = command{name: "leds", path: "leds", rule: returnZero}
	cmdDisplayCache    = command{name: "display_cache", path: "display_cache", rule: returnZero}
	cmdClearCache      = command{name: "clear_cache", path: "clear_cache", rule: returnZero}
	cmdTTS             = command{name: "tts", path: "tts", rule: returnTrue}
	cmdSound           = command{name: "sound", path: "sound", rule: returnZero}
	cmdSoundControl    = command{name: "sound_control", path: "sound_control", rule: returnZero}
	cmdSqueezebox      = command{name: "squeezebox", path: "squeezebox", rule: returnZero}
	cmdSnapshotList    = command{name: "snapshot_list", path: "snapshot_list", rule: returnZero}
	cmdClearSnapshots  = command{name: "clear_snapshots", path: "clear_snapshots", rule: returnZero}
	cmdSnapshot        = command{name: "snapshot", path: "snapshot", rule: returnZero}
	cmdStatus          = command{name: "status", path: "status", rule: returnIgnored}
	cmdRFIDList        = command{name: "rfid_list", path: "rfid_list", rule: returnZero}
	cmdRFIDStartRecord = command{name: "rfid_start_record", path: "rfid_start_record", rule: returnZero}
	cmdRFIDStopRecord  = command{name: "rfid_stop_record", path: "rfid_stop_record", rule: returnZero}
	cmdRFIDDelete      = command{name: "rfid_delete", path: "rfid_delete", rule: returnZero}
	cmdRFIDUnassign    = command{name: "rfid_unassign", path: "rfid_unassign", rule: returnZero}
	cmdMoods           = command{name: "moods", path: "apps/moods", rule: returnZero}
	cmdClock           = command{name: "clock", path: "apps/clock", rule: returnZero}
)

// commandTable lists every endpoint the client knows.
var commandTable = []command{
	cmdGetFreeSpace, cmdSoundList, cmdWakeup, cmdSleep,
	cmdEarsReset, cmdEarsRandom, cmdEarsMode, cmdEars,
	cmdLEDs, cmdDisplayCache, cmdClearCache, cmdTTS,
	cmdSound, cmdSoundControl, cmdSqueezebox,
	cmdSnapshotList, cmdClearSnapshots, cmdSnapshot,
	cmdStatus, cmdRFIDList, cmdRFIDStartRecord, cmdRFIDStopRecord,
	cmdRFIDDelete, cmdRFIDUnassign, cmdMoods, cmdClock,
}

// Commands returns the CGI paths the client can call.
func Commands() []string {
	out := make([]string, 0, len(commandTable))
	for _, c := range commandTable {
		out = append(out, c.path)
	}
	return out
}

type param struct {
	key   string
	value string
}

// request is one command invocation: the endpoint plus ordered parameters.
type request struct {
	cmd    command
	params []param
}

func newRequest(cmd command) request {
	return request{cmd: cmd}
}

// with returns a copy of r with key=value appended.
func (r request) with(key, value string) request {
	params := make([]param, len(r.params), len(r.params)+1)
	copy(params, r.params)
	r.params = append(params, param{key: key, value: value})
	return r
}

func (r request) withInt(key string, v int) request {
	return r.with(key, strconv.Itoa(v))
}

func (r request) withBool(key string, v bool) request {
	if v {
		return r.with(key, "1")
	}
	return r.with(key, "0")
}

// pathAndQuery renders the request with every value percent-encoded, keeping
// parameter order.
func (r request) pathAndQuery() string {
	var b strings.Builder
	b.WriteString(r.cmd.path)
	for i, p := range r.params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

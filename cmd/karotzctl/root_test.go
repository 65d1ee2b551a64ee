package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIWithStderr(t, args...)
	return out, err
}

func runCLIWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func fakeDevice(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		switch r.URL.Path {
		case "/cgi-bin/sleep", "/cgi-bin/ears":
			w.Write([]byte(`{"return":"0"}`))
		case "/cgi-bin/get_free_space":
			w.Write([]byte(`{"karotz_percent_used_space":"37","usb_percent_used_space":""}`))
		case "/cgi-bin/tts":
			w.Write([]byte(`{"played":"1","return":"true","voice":"3"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &seen
}

func TestSleepCommand(t *testing.T) {
	ts, seen := fakeDevice(t)
	out, err := runCLI(t, "--host", strings.TrimPrefix(ts.URL, "http://"), "sleep")
	if err != nil {
		t.Fatalf("sleep: %v", err)
	}
	var doc struct {
		Command string `json:"command"`
		Result  bool   `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if !doc.Result || doc.Command != "karotzctl sleep" {
		t.Fatalf("unexpected output %+v", doc)
	}
	if len(*seen) != 1 || (*seen)[0] != "/cgi-bin/sleep" {
		t.Fatalf("requests = %v", *seen)
	}
}

func TestDebugLogsReachStderr(t *testing.T) {
	ts, _ := fakeDevice(t)
	_, stderr, err := runCLIWithStderr(t, "--host", strings.TrimPrefix(ts.URL, "http://"), "--debug", "sleep")
	if err != nil {
		t.Fatalf("sleep: %v", err)
	}
	if !strings.Contains(stderr, "karotz response") {
		t.Fatalf("expected debug log on stderr, got %q", stderr)
	}
}

func TestEarsMoveBuildsQuery(t *testing.T) {
	ts, seen := fakeDevice(t)
	if _, err := runCLI(t, "--host", strings.TrimPrefix(ts.URL, "http://"), "ears", "move", "3", "17"); err != nil {
		t.Fatalf("ears move: %v", err)
	}
	if (*seen)[0] != "/cgi-bin/ears?left=3&right=17&noreset=1" {
		t.Fatalf("request = %s", (*seen)[0])
	}
}

func TestEarsMoveRejectsOutOfRangeWithoutRequest(t *testing.T) {
	ts, seen := fakeDevice(t)
	if _, err := runCLI(t, "--host", strings.TrimPrefix(ts.URL, "http://"), "ears", "move", "3", "18"); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(*seen) != 0 {
		t.Fatalf("no request expected, got %v", *seen)
	}
}

func TestFreeSpaceAndTTS(t *testing.T) {
	ts, _ := fakeDevice(t)
	host := strings.TrimPrefix(ts.URL, "http://")

	out, err := runCLI(t, "--host", host, "free-space")
	if err != nil {
		t.Fatalf("free-space: %v", err)
	}
	if !strings.Contains(out, `"karotz": 37`) || !strings.Contains(out, `"usb": -1`) {
		t.Fatalf("unexpected output %s", out)
	}

	out, err = runCLI(t, "--host", host, "tts", "--lang", "fr", "bonjour", "le", "monde")
	if err != nil {
		t.Fatalf("tts: %v", err)
	}
	if !strings.Contains(out, `"played": true`) {
		t.Fatalf("unexpected tts output %s", out)
	}
}

func TestHostFromEnvironment(t *testing.T) {
	ts, seen := fakeDevice(t)
	t.Setenv("KAROTZ_HOST", strings.TrimPrefix(ts.URL, "http://"))
	if _, err := runCLI(t, "sleep"); err != nil {
		t.Fatalf("sleep: %v", err)
	}
	if len(*seen) != 1 {
		t.Fatalf("requests = %v", *seen)
	}
}

func TestMissingHost(t *testing.T) {
	t.Setenv("KAROTZ_HOST", "")
	if _, err := runCLI(t, "sleep"); err == nil || !strings.Contains(err.Error(), "--host") {
		t.Fatalf("expected missing host error, got %v", err)
	}
}

func TestOfflineListings(t *testing.T) {
	out, err := runCLI(t, "languages")
	if err != nil || !strings.Contains(out, `"en-US"`) {
		t.Fatalf("languages: %v %s", err, out)
	}
	out, err = runCLI(t, "commands")
	if err != nil || !strings.Contains(out, `"snapshot_list"`) {
		t.Fatalf("commands: %v %s", err, out)
	}
}

package karotz

import (
	"context"
	"errors"
	"testing"
)

func TestLEDColorRejectsInvalidColors(t *testing.T) {
	tr := &fakeTransport{body: `{"return":0}`}
	c := newTestClient(t, tr)

	invalid := []string{"", "00FF0", "00FF000", "GGGGGG", "00ff0z", "#00ff0", " 00ff0", "00 ff0"}
	for _, color := range invalid {
		if _, err := c.LEDColor(context.Background(), color, false, 0, ""); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("color %q: expected ErrInvalidArgument, got %v", color, err)
		}
		if _, err := c.LEDColor(context.Background(), "00FF00", true, 10, color); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("color2 %q: expected ErrInvalidArgument, got %v", color, err)
		}
	}
	if _, err := c.LEDColor(context.Background(), "00FF00", true, -1, "FF0000"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("negative speed: expected ErrInvalidArgument, got %v", err)
	}
	if len(tr.urls) != 0 {
		t.Fatalf("expected no requests, got %v", tr.urls)
	}
}

func TestLEDColorQuery(t *testing.T) {
	tr := &fakeTransport{body: `{"return":"0","color":"00ff00"}`}
	c := newTestClient(t, tr)

	if ok, err := c.LEDColor(context.Background(), "00ff00", false, 700, "zzzzzz"); err != nil || !ok {
		t.Fatalf("LEDColor = %v, %v", ok, err)
	}
	if ok, err := c.LEDColor(context.Background(), "00ff00", true, 700, "FF00aa"); err != nil || !ok {
		t.Fatalf("LEDColor pulse = %v, %v", ok, err)
	}

	want := []string{
		"http://192.168.1.10/cgi-bin/leds?color=00ff00",
		"http://192.168.1.10/cgi-bin/leds?color=00ff00&pulse=1&speed=700&color2=FF00aa",
	}
	for i, u := range want {
		if tr.urls[i] != u {
			t.Fatalf("url[%d] = %s, want %s", i, tr.urls[i], u)
		}
	}
}

func TestLEDColorToleratesSpeedEncodings(t *testing.T) {
	for _, body := range []string{
		`{"return":0,"speed":"fast"}`,
		`{"return":"0","speed":700}`,
		`{"return":"0","speed":"700","color":112233}`,
	} {
		c := newTestClient(t, &fakeTransport{body: body})
		ok, err := c.LEDColor(context.Background(), "00FF00", true, 700, "FF0000")
		if err != nil || !ok {
			t.Fatalf("LEDColor with %s = %v, %v; want true", body, ok, err)
		}
	}
}

func TestValidColor(t *testing.T) {
	for _, ok := range []string{"000000", "ffffff", "FFFFFF", "a1B2c3"} {
		if !ValidColor(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
}

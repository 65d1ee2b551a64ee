package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "karotz-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		if got := r.Header.Get("X-Extra"); got != "1" {
			t.Errorf("missing per-request header, got %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"return":"0"}`))
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, WithUserAgent("karotz-test"))
	resp, err := client.Get(context.Background(), srv.URL+"/cgi-bin/status", map[string]string{"X-Extra": "1"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if string(resp.Body()) != `{"return":"0"}` {
		t.Fatalf("body = %s", resp.Body())
	}
}

func TestRestyClientGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewRestyClient(time.Second)
	if _, err := client.Get(context.Background(), url, nil); err == nil {
		t.Fatalf("expected connection error")
	}
}

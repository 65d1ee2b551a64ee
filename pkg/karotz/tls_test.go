package karotz

import (
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyPeerAcceptsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	raw := [][]byte{srv.Certificate().Raw}
	if err := verifyPeer(raw, x509.NewCertPool(), "192.168.1.10"); err != nil {
		t.Fatalf("expected self-signed certificate to be trusted: %v", err)
	}
}

func TestVerifyPeerRejectsGarbage(t *testing.T) {
	if err := verifyPeer(nil, x509.NewCertPool(), ""); err == nil {
		t.Fatalf("expected error without certificates")
	}
	if err := verifyPeer([][]byte{[]byte("not a cert")}, x509.NewCertPool(), ""); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestVerifyPeerChecksChains(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	// A two element chain is not self-signed and must verify against the roots.
	cert := srv.Certificate().Raw
	if err := verifyPeer([][]byte{cert, cert}, x509.NewCertPool(), "example.com"); err == nil {
		t.Fatalf("expected chain verification against empty roots to fail")
	}
}

func TestSelfSignedTLSConfig(t *testing.T) {
	cfg, err := selfSignedTLSConfig("karotz")
	if err != nil {
		t.Fatalf("selfSignedTLSConfig: %v", err)
	}
	if cfg.VerifyPeerCertificate == nil {
		t.Fatalf("expected peer verification hook")
	}
}

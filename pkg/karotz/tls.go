package karotz

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

// systemCertPool is swapped in tests.
var systemCertPool = x509.SystemCertPool

// selfSignedTLSConfig trusts a lone self-signed certificate, which is what the
// device ships with, and verifies any other chain against the system roots.
func selfSignedTLSConfig(serverName string) (*tls.Config, error) {
	roots, err := systemCertPool()
	if err != nil {
		return nil, fmt.Errorf("%w: load system trust store: %v", ErrConfiguration, err)
	}
	if roots == nil {
		roots = x509.NewCertPool()
	}
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		// Chain verification happens in VerifyPeerCertificate.
		InsecureSkipVerify: true, //nolint:gosec
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return verifyPeer(rawCerts, roots, serverName)
		},
	}, nil
}

func verifyPeer(rawCerts [][]byte, roots *x509.CertPool, serverName string) error {
	if len(rawCerts) == 0 {
		return errors.New("peer sent no certificates")
	}
	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return fmt.Errorf("parse peer certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	leaf := certs[0]
	if len(certs) == 1 && isSelfSigned(leaf) {
		return nil
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}
	_, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		DNSName:       serverName,
	})
	return err
}

func isSelfSigned(cert *x509.Certificate) bool {
	if string(cert.RawIssuer) != string(cert.RawSubject) {
		return false
	}
	return cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

package transport

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
)

// ErrPinMismatch is returned by the TLS handshake when no certificate in the
// presented chain matches a configured pin.
var ErrPinMismatch = errors.New("certificate pin mismatch")

// SPKIHash returns the base64 SHA-256 hash of a certificate's public key info,
// the format accepted by WithPinnedKeys.
func SPKIHash(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// pinnedTLSConfig returns a TLS config that runs normal chain verification and
// then requires one certificate of the chain to match a pin.
func pinnedTLSConfig(pins []string) *tls.Config {
	allowed := make(map[string]struct{}, len(pins))
	for _, p := range pins {
		allowed[p] = struct{}{}
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			for _, raw := range rawCerts {
				cert, err := x509.ParseCertificate(raw)
				if err != nil {
					continue
				}
				if _, ok := allowed[SPKIHash(cert)]; ok {
					return nil
				}
			}
			return ErrPinMismatch
		},
	}
}

// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pki loads X.509 certificate material from the PKI subtree of
// the configuration and resolves CA trust chains. Certificates are
// treated as opaque signed objects: chain building compares subject and
// issuer names only and performs no signature verification. Signature
// checking is the SSH daemon's job at authentication time; this package
// only assembles the file content the daemon consumes.
package pki

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
)

// Certificate is an immutable loaded certificate. Identity comparisons
// use the raw DER subject and issuer names, so two certificates with
// byte-identical subjects are the same identity regardless of how the
// name would render as a string.
type Certificate struct {
	cert *x509.Certificate
}

// LoadCertificate parses the first CERTIFICATE block in PEM text.
// The configuration stores CA certificates as PEM without surrounding
// whitespace guarantees, so leading and trailing space is tolerated.
func LoadCertificate(pemText string) (*Certificate, error) {
	data := []byte(strings.TrimSpace(pemText))
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			parsed, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parsing certificate: %w", err)
			}
			return &Certificate{cert: parsed}, nil
		}
		data = rest
	}
	return nil, fmt.Errorf("no CERTIFICATE block found in PEM input")
}

// EncodeCertificate renders the certificate as PEM text. The output has
// a trailing newline, so chains can be joined by plain concatenation.
func EncodeCertificate(certificate *Certificate) string {
	block := &pem.Block{Type: "CERTIFICATE", Bytes: certificate.cert.Raw}
	return string(pem.EncodeToMemory(block))
}

// Subject returns the rendered subject name, for error messages and logs.
func (c *Certificate) Subject() string {
	return c.cert.Subject.String()
}

// Issuer returns the rendered issuer name.
func (c *Certificate) Issuer() string {
	return c.cert.Issuer.String()
}

// SelfSigned reports whether the certificate's subject and issuer names
// are byte-identical. A self-signed certificate terminates a chain.
func (c *Certificate) SelfSigned() bool {
	return string(c.cert.RawSubject) == string(c.cert.RawIssuer)
}

// IssuedBy reports whether issuer's subject matches this certificate's
// issuer name.
func (c *Certificate) IssuedBy(issuer *Certificate) bool {
	return string(c.cert.RawIssuer) == string(issuer.cert.RawSubject)
}

// fingerprint is the content identity used for pool deduplication.
func (c *Certificate) fingerprint() [sha256.Size]byte {
	return sha256.Sum256(c.cert.Raw)
}

// subjectKey is the map key for issuer lookups.
func (c *Certificate) subjectKey() string {
	return string(c.cert.RawSubject)
}

// issuerKey is the map key naming the certificate this one was issued by.
func (c *Certificate) issuerKey() string {
	return string(c.cert.RawIssuer)
}

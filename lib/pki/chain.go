// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package pki

import "fmt"

// Pool is a set of candidate certificates for chain resolution.
// Certificates are deduplicated by content, so loading the same CA
// under two configuration names contributes one candidate.
type Pool struct {
	bySubject map[string][]*Certificate
	seen      map[[32]byte]bool
}

// NewPool creates a pool containing the given certificates.
func NewPool(certificates ...*Certificate) *Pool {
	pool := &Pool{
		bySubject: make(map[string][]*Certificate),
		seen:      make(map[[32]byte]bool),
	}
	for _, certificate := range certificates {
		pool.Add(certificate)
	}
	return pool
}

// Add inserts a certificate into the pool. Duplicates by content are
// ignored.
func (p *Pool) Add(certificate *Certificate) {
	fingerprint := certificate.fingerprint()
	if p.seen[fingerprint] {
		return
	}
	p.seen[fingerprint] = true
	key := certificate.subjectKey()
	p.bySubject[key] = append(p.bySubject[key], certificate)
}

// Len returns the number of distinct certificates in the pool.
func (p *Pool) Len() int {
	return len(p.seen)
}

// issuerOf returns a pool certificate whose subject matches the given
// certificate's issuer, or nil when no candidate matches.
func (p *Pool) issuerOf(certificate *Certificate) *Certificate {
	candidates := p.bySubject[certificate.issuerKey()]
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0]
}

// Chain is an ordered certificate chain. Index 0 is the leaf; the last
// element of a complete chain is self-signed.
type Chain []*Certificate

// Encode renders the chain as concatenated PEM blocks, leaf first.
func (c Chain) Encode() string {
	var out string
	for _, certificate := range c {
		out += EncodeCertificate(certificate)
	}
	return out
}

// IncompleteChainError reports that chain resolution stopped before
// reaching a self-signed root.
type IncompleteChainError struct {
	// Subject is the subject of the last certificate that was linked.
	Subject string
	// Issuer is the issuer name that could not be resolved from the
	// pool. Empty when resolution stopped because of a cycle.
	Issuer string
	// Cycle reports that the next issuer was already part of the chain.
	Cycle bool
}

func (e *IncompleteChainError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("certificate chain contains a cycle at %q", e.Subject)
	}
	return fmt.Sprintf("incomplete certificate chain: no candidate for issuer %q of %q", e.Issuer, e.Subject)
}

// FindChain walks from leaf towards the root, appending the pool
// certificate whose subject matches the current tail's issuer, until
// the tail is self-signed. Candidates not on the issuer path are
// ignored. The walk is iterative with a visited set, so a malformed
// pool containing an issuer cycle terminates with an error instead of
// looping. Memory is bounded by the pool size.
func FindChain(leaf *Certificate, pool *Pool) (Chain, error) {
	chain := Chain{leaf}
	visited := map[[32]byte]bool{leaf.fingerprint(): true}

	tail := leaf
	for !tail.SelfSigned() {
		next := pool.issuerOf(tail)
		if next == nil {
			return nil, &IncompleteChainError{Subject: tail.Subject(), Issuer: tail.Issuer()}
		}
		if visited[next.fingerprint()] {
			return nil, &IncompleteChainError{Subject: tail.Subject(), Cycle: true}
		}
		visited[next.fingerprint()] = true
		chain = append(chain, next)
		tail = next
	}
	return chain, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package token issues and redeems short-lived, single-use download tokens.
// Each token maps to one resolved full-text URL; the store is the only
// process-wide mutable state in the service.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// Redemption failure kinds. The HTTP layer maps these to distinct status codes.
var (
	ErrNotFound    = errors.New("token not found")
	ErrExpired     = errors.New("token expired")
	ErrAlreadyUsed = errors.New("token already used")
)

const defaultTTL = 30 * time.Minute

// tokenBytes gives 128 bits of entropy, hex encoded to 32 characters.
const tokenBytes = 16

// Entry is the redeemed view of a token: where to fetch the file and what
// to call it. Internal bookkeeping stays inside the store.
type Entry struct {
	TargetURL string
	Filename  string
}

type record struct {
	entry     Entry
	createdAt time.Time
	expiresAt time.Time
	redeemed  bool
}

// Store holds minted tokens in memory. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	records map[string]*record
	ttl     time.Duration

	// now is swapped in tests to drive expiry.
	now func() time.Time
}

// NewStore returns an empty store. A zero TTL falls back to 30 minutes.
func NewStore(cfg types.TokenConfig) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		records: make(map[string]*record),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Mint generates an unguessable token bound to targetURL and returns it.
// Expired entries are pruned opportunistically on each mint.
func (s *Store) Mint(targetURL, filename string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	tok := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.records[tok] = &record{
		entry:     Entry{TargetURL: targetURL, Filename: filename},
		createdAt: now,
		expiresAt: now.Add(s.ttl),
	}
	return tok, nil
}

// Redeem resolves a token to its entry, enforcing expiry and single use.
// Exactly one concurrent redemption of the same token succeeds; the entry
// stays in the map (marked redeemed) until it expires, so a replayed token
// fails with ErrAlreadyUsed rather than ErrNotFound.
func (s *Store) Redeem(tok string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[tok]
	if !ok {
		return Entry{}, ErrNotFound
	}
	now := s.now()
	if now.After(rec.expiresAt) {
		delete(s.records, tok)
		return Entry{}, ErrExpired
	}
	if rec.redeemed {
		return Entry{}, ErrAlreadyUsed
	}
	rec.redeemed = true
	return rec.entry, nil
}

// Len reports the number of live (unexpired, possibly redeemed) entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	return len(s.records)
}

// Sweep evicts expired entries every interval until ctx is cancelled.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.pruneLocked(s.now())
			s.mu.Unlock()
		}
	}
}

func (s *Store) pruneLocked(now time.Time) {
	for tok, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, tok)
		}
	}
}

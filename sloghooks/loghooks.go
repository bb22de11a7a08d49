// Package sloghooks logs scopecache hook events with log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/scopecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	BumpEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
	bumpCtr atomic.Uint64
}

var _ scopecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("scopecache.hit", "key", h.redact(storageKey))
}

func (h *Hooks) Miss(storageKey string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("scopecache.miss", "key", h.redact(storageKey))
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("scopecache.provider_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) CorruptEntry(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("scopecache.corrupt_entry",
		"key", h.redact(storageKey),
		"err", err)
}

// VersionBumped logs the scope name unredacted.
func (h *Hooks) VersionBumped(scope string, version int64) {
	if h.l == nil || !sample(h.opts.BumpEvery, &h.bumpCtr) {
		return
	}
	h.l.Info("scopecache.version_bumped",
		"scope", scope,
		"version", version)
}

func (h *Hooks) VersionError(op, scope string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("scopecache.version_error",
		"op", op,
		"scope", scope,
		"err", err)
}

func (h *Hooks) StoreBypassed(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("scopecache.store_bypassed",
		"op", op,
		"err", err)
}

// Package canonical normalizes article URLs into stable identity keys.
// Two URLs that differ only in tracking parameters, fragment, default port,
// or host casing must map to the same identifier.
package canonical

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// defaultTrackingParams are query keys dropped during canonicalization.
// Keys with the "utm_" prefix are always dropped regardless of this list.
var defaultTrackingParams = []string{
	"fbclid",
	"gclid",
	"igshid",
	"mc_cid",
	"mc_eid",
	"ref",
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Canonicalizer rewrites URLs into canonical form using a tracking-parameter
// denylist. The zero value is not usable; call New.
type Canonicalizer struct {
	tracking map[string]struct{}
}

// New builds a Canonicalizer with the default denylist plus any extra keys.
func New(extraTracking ...string) *Canonicalizer {
	c := &Canonicalizer{tracking: make(map[string]struct{})}
	for _, key := range defaultTrackingParams {
		c.tracking[key] = struct{}{}
	}
	for _, key := range extraTracking {
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			c.tracking[key] = struct{}{}
		}
	}
	return c
}

// Canonicalize returns the canonical form of raw. The operation is
// idempotent: canonicalizing an already-canonical URL returns it unchanged.
func (c *Canonicalizer) Canonicalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if port := u.Port(); port != "" && defaultPorts[u.Scheme] == port {
		u.Host = u.Hostname()
	}

	u.Fragment = ""
	u.RawQuery = c.filterQuery(u.Query())

	return u.String(), nil
}

// Identify returns the canonical URL and its SHA-1 hex identifier.
func (c *Canonicalizer) Identify(raw string) (canonicalURL, id string, err error) {
	canonicalURL, err = c.Canonicalize(raw)
	if err != nil {
		return "", "", err
	}
	sum := sha1.Sum([]byte(canonicalURL))
	return canonicalURL, hex.EncodeToString(sum[:]), nil
}

// filterQuery drops denylisted keys and re-encodes the remainder sorted by key
// so the canonical form is deterministic.
func (c *Canonicalizer) filterQuery(q url.Values) string {
	for key := range q {
		if c.isTracking(key) {
			delete(q, key)
		}
	}
	for _, vals := range q {
		sort.Strings(vals)
	}
	// url.Values.Encode sorts by key.
	return q.Encode()
}

func (c *Canonicalizer) isTracking(key string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	_, ok := c.tracking[key]
	return ok
}

// Package featureflags evaluates the FEATURE_FLAGS switches that gate optional
// surfaces of the API.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// APIDocs mounts the swagger UI under /api/swagger.
	APIDocs = "api_docs"
	// AnonymousRealtime lets viewers without a credential open /api/ws.
	AnonymousRealtime = "anonymous_ws"
)

// Defaults returns the value of every known flag when FEATURE_FLAGS does not
// mention it. Documentation is hidden in production.
func Defaults(production bool) map[string]string {
	docs := "on"
	if production {
		docs = "off"
	}
	return map[string]string{
		APIDocs:           docs,
		AnonymousRealtime: "on",
	}
}

// Manager evaluates flags written as a comma-separated key=value list,
// e.g. "api_docs=off,anonymous_ws=50%".
type Manager struct {
	flags map[string]string
}

// NewManager creates a manager from raw with no defaults.
func NewManager(raw string) *Manager {
	return NewManagerWithDefaults(raw, nil)
}

// NewManagerWithDefaults creates a manager from raw; entries in raw override
// defaults.
func NewManagerWithDefaults(raw string, defaults map[string]string) *Manager {
	flags := make(map[string]string, len(defaults))
	for k, v := range defaults {
		if k, v = normalize(k), normalize(v); k != "" && v != "" {
			flags[k] = v
		}
	}
	for k, v := range parse(raw) {
		flags[k] = v
	}
	return &Manager{flags: flags}
}

func parse(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// Enabled reports whether name is on for userID. Values are on/true/1,
// off/false/0, or N% for a deterministic per-user rollout. Percentage
// rollouts never include anonymous callers (userID 0) unless N is 100.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil, pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of the effective flag values.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot evaluates every flag for userID.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}

package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("api_docs=on,anonymous_ws=off,a=true,b=false,c=1,d=0")

	if !m.Enabled(APIDocs, 0) || !m.Enabled("a", 3) || !m.Enabled("c", 3) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled(AnonymousRealtime, 0) || m.Enabled("b", 3) || m.Enabled("d", 3) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if m.Enabled("unknown", 3) {
		t.Fatal("unknown flags are off")
	}
}

func TestEnabled_PercentageRollout(t *testing.T) {
	m := NewManager("everyone=100%,nobody=0%,canary=30%,broken=abc%")

	if !m.Enabled("everyone", 0) {
		t.Fatal("100% includes anonymous callers")
	}
	if m.Enabled("nobody", 9) || m.Enabled("broken", 9) {
		t.Fatal("0% and malformed rollouts are off")
	}
	if m.Enabled("canary", 0) {
		t.Fatal("partial rollout excludes anonymous callers")
	}

	first := m.Enabled("canary", 77)
	for i := 0; i < 5; i++ {
		if m.Enabled("CANARY", 77) != first {
			t.Fatal("rollout must be deterministic per user")
		}
	}
}

func TestDefaultsAndOverrides(t *testing.T) {
	dev := NewManagerWithDefaults("", Defaults(false))
	if !dev.Enabled(APIDocs, 0) || !dev.Enabled(AnonymousRealtime, 0) {
		t.Fatalf("unexpected development defaults: %#v", dev.Raw())
	}

	prod := NewManagerWithDefaults("anonymous_ws=off", Defaults(true))
	if prod.Enabled(APIDocs, 0) {
		t.Fatal("docs are hidden in production by default")
	}
	if prod.Enabled(AnonymousRealtime, 0) {
		t.Fatal("explicit entry overrides the default")
	}

	raw := NewManagerWithDefaults(" junk , api_docs = ON ", Defaults(true)).Raw()
	if raw[APIDocs] != "on" || len(raw) != 2 {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.Enabled(APIDocs, 1) || len(m.Raw()) != 0 || len(m.Snapshot(1)) != 0 {
		t.Fatal("nil manager evaluates everything off")
	}
}

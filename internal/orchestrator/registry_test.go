package orchestrator

import "testing"

func TestRegistry_LookupAndNames(t *testing.T) {
	r := NewRegistry(map[string]ServiceMeta{
		"asr-server": {Category: "asr", HealthURL: "http://asr/health"},
		"mt-server":  {Category: "mt", HealthURL: "http://mt/health"},
	})

	meta, ok := r.Lookup("asr-server")
	if !ok {
		t.Fatalf("expected asr-server to be registered")
	}
	if meta.Category != "asr" {
		t.Fatalf("Category = %q, want asr", meta.Category)
	}

	if _, ok = r.Lookup("unknown"); ok {
		t.Fatalf("expected unknown service to be absent")
	}

	if got := len(r.Names()); got != 2 {
		t.Fatalf("Names() len = %d, want 2", got)
	}
}

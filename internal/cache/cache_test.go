package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("check", "the sky is blue", "")
	b := Key("check", "the sky is blue", "")
	if a != b {
		t.Errorf("same parts produced different keys: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "factstream:v1:") {
		t.Errorf("missing key namespace prefix: %s", a)
	}
}

func TestKey_PartBoundaries(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("keys collide across part boundaries")
	}
}

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)

	m.Set("k", "v", 0)
	val, ok := m.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if val.(string) != "v" {
		t.Errorf("expected v, got %v", val)
	}

	m.Delete("k")
	if _, ok := m.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)

	m.Set("k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := m.Get("k"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

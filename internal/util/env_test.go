package util

import "testing"

func TestGetEnvString_Default(t *testing.T) {
	if v := GetEnvString("KGSEED_TEST_UNSET", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %q", v)
	}
	t.Setenv("KGSEED_TEST_SET", "value")
	if v := GetEnvString("KGSEED_TEST_SET", "fallback"); v != "value" {
		t.Fatalf("expected value, got %q", v)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("KGSEED_TEST_INT", "1024")
	if v := GetEnvInt("KGSEED_TEST_INT", 7); v != 1024 {
		t.Fatalf("expected 1024, got %d", v)
	}
	t.Setenv("KGSEED_TEST_INT", "not-a-number")
	if v := GetEnvInt("KGSEED_TEST_INT", 7); v != 7 {
		t.Fatalf("expected default 7 for invalid value, got %d", v)
	}
	if v := GetEnvInt("KGSEED_TEST_UNSET", 7); v != 7 {
		t.Fatalf("expected default 7 for unset key, got %d", v)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("KGSEED_TEST_BOOL", "true")
	if !GetEnvBool("KGSEED_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("KGSEED_TEST_BOOL", "yes")
	if GetEnvBool("KGSEED_TEST_BOOL", false) {
		t.Fatal("expected default false for non-boolean value")
	}
}

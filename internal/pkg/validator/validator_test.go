package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidMonthKey(t *testing.T) {
	valid := []string{"2025-01", "2025-12", "1999-06"}
	invalid := []string{"2025-13", "2025-00", "2025-1", "202501", "2025-01-01", ""}
	for _, mk := range valid {
		if !IsValidMonthKey(mk) {
			t.Errorf("IsValidMonthKey(%q) = false, want true", mk)
		}
	}
	for _, mk := range invalid {
		if IsValidMonthKey(mk) {
			t.Errorf("IsValidMonthKey(%q) = true, want false", mk)
		}
	}
}

func TestParseMonthKey(t *testing.T) {
	got, ok := ParseMonthKey("2025-03")
	if !ok {
		t.Fatal("ParseMonthKey(2025-03) failed")
	}
	if got.Year() != 2025 || got.Month() != 3 || got.Day() != 1 {
		t.Errorf("ParseMonthKey(2025-03) = %v, want 2025-03-01", got)
	}

	if _, ok := ParseMonthKey("2025-3"); ok {
		t.Error("ParseMonthKey(2025-3) = ok, want failure")
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-02-29"); ok {
		t.Error("IsValidDate(2025-02-29) = true, want false")
	}
	if _, ok := IsValidDate("2024-02-29"); !ok {
		t.Error("IsValidDate(2024-02-29) = false, want true")
	}
	if _, ok := IsValidDate("not-a-date"); ok {
		t.Error("IsValidDate(not-a-date) = true, want false")
	}
}

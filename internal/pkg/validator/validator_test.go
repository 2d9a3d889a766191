package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
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
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-01-01", "2024-02-29"}
	invalid := []string{"2023-02-29", "2024-13-01", "01-01-2024", ""}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	assert.True(t, IsValidTimeOfDay("09:30"))
	assert.True(t, IsValidTimeOfDay("23:59"))
	assert.False(t, IsValidTimeOfDay("24:00"))
	assert.False(t, IsValidTimeOfDay("9:30"))
	assert.False(t, IsValidTimeOfDay("09:60"))
}

func TestIsValidMonthAndYear(t *testing.T) {
	assert.True(t, IsValidMonth(1))
	assert.True(t, IsValidMonth(12))
	assert.False(t, IsValidMonth(0))
	assert.False(t, IsValidMonth(13))

	assert.True(t, IsValidYear(2024))
	assert.False(t, IsValidYear(1969))
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"PENDING", "APPROVED"}
	if !IsInSlice("PENDING", slice) {
		t.Error("IsInSlice should return true for present value")
	}
	if IsInSlice("REJECTED", slice) {
		t.Error("IsInSlice should return false for absent value")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "start_date", Message: "is required"},
		{Field: "end_date", Message: "must be on or after start_date"},
	}
	want := "start_date: is required; end_date: must be on or after start_date"
	if errs.Error() != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", errs.Error(), want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "leave_type", Message: "is required"},
		{Field: "reason", Message: "is required"},
	}
	m := errs.ToMap()
	assert.Equal(t, map[string]string{"leave_type": "is required", "reason": "is required"}, m)
}

func TestValidationErrors_AddAndErr(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("reason", "is required")
	err := errs.Err()
	assert.Error(t, err)

	var ve ValidationErrors
	assert.True(t, errors.As(err, &ve))
	assert.Len(t, ve, 1)
}

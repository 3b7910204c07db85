package validator

import (
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
		assert.Equal(t, c.want, IsEmpty(c.input), c.input)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestIsE164PhoneNumber(t *testing.T) {
	valid := []string{"+919876543210", "+14155552671", "+6281234567"}
	invalid := []string{"919876543210", "+0919876543210", "+91 98765 43210", "+1234567890123456", "", "+"}
	for _, phone := range valid {
		assert.True(t, IsE164PhoneNumber(phone), phone)
	}
	for _, phone := range invalid {
		assert.False(t, IsE164PhoneNumber(phone), phone)
	}
}

func TestIsHHMM(t *testing.T) {
	assert.True(t, IsHHMM("00:00"))
	assert.True(t, IsHHMM("09:30"))
	assert.True(t, IsHHMM("23:59"))
	assert.False(t, IsHHMM("24:00"))
	assert.False(t, IsHHMM("9:30"))
	assert.False(t, IsHHMM("09:60"))
	assert.False(t, IsHHMM(""))
}

func TestIsWeekday(t *testing.T) {
	assert.True(t, IsWeekday("sunday"))
	assert.True(t, IsWeekday("Saturday"))
	assert.False(t, IsWeekday("sun"))
	assert.False(t, IsWeekday(""))
}

func TestIsBase64(t *testing.T) {
	assert.True(t, IsBase64("aGVsbG8="))
	assert.True(t, IsBase64("data:image/png;base64,aGVsbG8="))
	assert.False(t, IsBase64("not base64!"))
	assert.False(t, IsBase64(""))
}

func TestIsValidGeopoint(t *testing.T) {
	assert.True(t, IsValidGeopoint(28.7, 77.25))
	assert.True(t, IsValidGeopoint(-90, 180))
	assert.False(t, IsValidGeopoint(91, 0))
	assert.False(t, IsValidGeopoint(0, -181))
}

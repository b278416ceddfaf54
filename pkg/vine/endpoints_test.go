package vine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURLs(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"profile", ProfileURL("https://archive.vine.co", "123"), "https://archive.vine.co/profiles/_/123.json"},
		{"profile trailing slash", ProfileURL("https://archive.vine.co/", "123"), "https://archive.vine.co/profiles/_/123.json"},
		{"post", PostURL("https://archive.vine.co", "abc"), "https://archive.vine.co/posts/abc.json"},
		{"vanity", VanityURL("https://vine.co", "testuser"), "https://vine.co/api/users/profiles/vanity/testuser"},
		{"vanity escaped", VanityURL("https://vine.co", "a b/c"), "https://vine.co/api/users/profiles/vanity/a%20b%2Fc"},
		{"user info", UserInfoURL("https://vine.co", "123"), "https://vine.co/api/users/profiles/123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestFormatCreated(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{"2021-01-02T03:04:05.678", "January 02, 2021 03:04:05 AM", false},
		{"2013-06-20T18:30:00.000000", "June 20, 2013 06:30:00 PM", false},
		{"2014-11-05T12:00:00", "November 05, 2014 12:00:00 PM", false},
		{"2021-01-02 03:04:05", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatCreated(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsNumericID(t *testing.T) {
	assert.True(t, IsNumericID("123"))
	assert.True(t, IsNumericID("0"))
	assert.False(t, IsNumericID(""))
	assert.False(t, IsNumericID("12a"))
	assert.False(t, IsNumericID("-1"))
	assert.False(t, IsNumericID("１２"))
}

package main

import (
	"testing"
	"time"
)

func TestPurgeInterval(t *testing.T) {
	testCases := []struct {
		name     string
		input    time.Duration
		expected time.Duration
	}{
		{"Configured", 30 * time.Second, 30 * time.Second},
		{"Zero", 0, defaultPurgeInterval},
		{"Negative", -time.Minute, defaultPurgeInterval},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := purgeInterval(tc.input); got != tc.expected {
				t.Errorf("purgeInterval(%v) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

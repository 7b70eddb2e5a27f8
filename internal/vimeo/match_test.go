package vimeo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesTokens(t *testing.T) {
	tests := []struct {
		name   string
		video  Video
		tokens []string
		want   bool
	}{
		{
			name:   "token in name",
			video:  Video{Name: "Go Cohort - Day 1 - Session 2"},
			tokens: []string{"Go Cohort", "GO-7"},
			want:   true,
		},
		{
			name:   "token in description only",
			video:  Video{Name: "Session recording", Description: "Uploaded for GO-7"},
			tokens: []string{"Go Cohort", "GO-7"},
			want:   true,
		},
		{
			name:   "case insensitive",
			video:  Video{Name: "go cohort day 3"},
			tokens: []string{"GO COHORT"},
			want:   true,
		},
		{
			name:   "no token present",
			video:  Video{Name: "Rust Cohort - Day 1", Description: "RS-1"},
			tokens: []string{"Go Cohort", "GO-7"},
			want:   false,
		},
		{
			name:   "empty tokens never match",
			video:  Video{Name: "anything"},
			tokens: []string{"", "  "},
			want:   false,
		},
		{
			// A shared substring matches across batches. Known limitation
			// of name-based association.
			name:   "shared token false positive",
			video:  Video{Name: "Advanced Go Cohort - Day 1"},
			tokens: []string{"Go Cohort"},
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesTokens(tt.video, tt.tokens))
		})
	}
}

func TestVideoID(t *testing.T) {
	assert.Equal(t, "123456789", Video{URI: "/videos/123456789"}.VideoID())
	assert.Equal(t, "", Video{URI: ""}.VideoID())
}

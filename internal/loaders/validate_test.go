package loaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePlayerName(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		input   string
		wantErr bool
	}{
		{"regular name", 1, "Shohei Ohtani", false},
		{"accented name", 2, "José Ramírez", false},
		{"empty", 3, "  ", true},
		{"placeholder", 660271, "Player 660271", true},
		{"unknown", 4, "Unknown Player", true},
		{"null", 5, "null", true},
		{"repeated word", 6, "Player Player", true},
		{"test account", 7, "Test Batter", true},
		{"too short", 8, "Al", true},
		{"too long", 9, "Bartholomew Maximilian Fitzgerald Montgomery Jones III", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlayerName(tt.id, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

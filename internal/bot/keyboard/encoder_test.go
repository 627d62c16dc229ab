package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Proton-105/shulk-bot/internal/bot/keyboard"
)

func TestEncodeCallback(t *testing.T) {
	tests := []struct {
		name      string
		unique    string
		data      string
		want      string
		wantError bool
	}{
		{
			name:   "with data",
			unique: "menu_ebal",
			data:   "826753238392111106",
			want:   "menu_ebal:826753238392111106",
		},
		{
			name:   "without data",
			unique: keyboard.CallbackDaily,
			want:   "menu_daily",
		},
		{
			name:      "unique exceeds limit",
			unique:    strings.Repeat("x", keyboard.CallbackDataLimitBytes+1),
			wantError: true,
		},
		{
			name:      "payload exceeds limit",
			unique:    "menu_sbal",
			data:      strings.Repeat("9", keyboard.CallbackDataLimitBytes),
			wantError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyboard.EncodeCallback(tt.unique, tt.data)
			if tt.wantError {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantUnique string
		wantData   string
		wantErr    bool
	}{
		{
			name:       "unique and data",
			input:      "menu_ebal:42",
			wantUnique: "menu_ebal",
			wantData:   "42",
		},
		{
			name:       "only unique",
			input:      "menu_daily",
			wantUnique: "menu_daily",
		},
		{
			name:       "multiple separators",
			input:      "action:part1:part2",
			wantUnique: "action",
			wantData:   "part1:part2",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			unique, data, err := keyboard.DecodeCallback(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantUnique, unique)
			assert.Equal(t, tt.wantData, data)
		})
	}
}

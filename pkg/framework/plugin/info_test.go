package plugin

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
)

func TestUIDGeneration(t *testing.T) {
	tests := []struct {
		name     string
		pluginID string
	}{
		{"Analyzer plugin", "town.versary.vstmommy"},
		{"Other plugin", "com.mycompany.newplugin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &Info{ID: tt.pluginID}

			uid1 := info.UID()
			uid2 := info.UID()
			if uid1 != uid2 {
				t.Errorf("UID generation is not deterministic for %s", tt.pluginID)
			}

			if err := info.ValidateUID(); err != nil {
				t.Errorf("UID validation failed for %s: %v", tt.pluginID, err)
			}

			if got := uid1.Version(); got != 5 {
				t.Errorf("expected a version 5 UUID, got version %d", got)
			}
		})
	}
}

func TestUIDUniqueness(t *testing.T) {
	plugins := []string{
		"com.company1.plugin1",
		"com.company1.plugin2",
		"com.company2.plugin1",
		"town.versary.vstmommy",
	}

	uids := make(map[[16]byte]string)

	for _, pluginID := range plugins {
		info := &Info{ID: pluginID}
		uid := info.UID()

		if existingID, exists := uids[uid]; exists {
			t.Errorf("UID collision between %s and %s", pluginID, existingID)
		}

		uids[uid] = pluginID
	}
}

func TestUIDValidation(t *testing.T) {
	tests := []struct {
		name    string
		info    Info
		wantErr bool
	}{
		{
			name:    "Valid plugin ID",
			info:    Info{ID: "com.example.plugin"},
			wantErr: false,
		},
		{
			name:    "Empty plugin ID",
			info:    Info{ID: ""},
			wantErr: true,
		},
		{
			name:    "Whitespace plugin ID",
			info:    Info{ID: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.ValidateUID()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrEmptyID) {
				t.Errorf("ValidateUID() error = %v, want ErrEmptyID", err)
			}
		})
	}
}

func TestUIDString(t *testing.T) {
	info := Info{ID: "town.versary.vstmommy"}
	s := fmt.Sprintf("%s", info.UID())

	if !utf8.ValidString(s) {
		t.Fatalf("UID does not format as text: %q", s)
	}
	if len(s) != 36 || strings.Count(s, "-") != 4 {
		t.Errorf("UID %q is not in 8-4-4-4-12 form", s)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("uuid.Parse(%q): %v", s, err)
	}
	if parsed != info.UID() {
		t.Errorf("parsed UID %v differs from %v", parsed, info.UID())
	}
}

// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/identra/pkg/identity"
)

/*
TestNormalizeUsername verifies trimming, case folding, and Unicode
normalization so equivalent spellings map to the same stored identifier.
*/
func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase_passthrough", "taibv", "taibv"},
		{"uppercase_folded", "TaiBV", "taibv"},
		{"surrounding_whitespace", "  taibv  ", "taibv"},
		{"fullwidth_compatibility", "ｔａｉｂｖ", "taibv"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, identity.NormalizeUsername(tt.input))
		})
	}
}

/*
TestNormalizeEmail verifies email addresses normalize the same way.
*/
func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase_passthrough", "tai@identra.app", "tai@identra.app"},
		{"uppercase_folded", "Tai@Identra.App", "tai@identra.app"},
		{"surrounding_whitespace", " tai@identra.app\n", "tai@identra.app"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, identity.NormalizeEmail(tt.input))
		})
	}
}

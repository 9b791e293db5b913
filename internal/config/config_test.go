// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "Abc123!unit-test-secret-0123456789"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OINS_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != "./data/oins.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want 3000", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.ServerAddr() != "localhost:3000" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if cfg.DoSeed {
		t.Error("seeding should be off by default")
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("OINS_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing session secret")
	}
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("OINS_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for short session secret")
	}
	if !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("error should mention minimum length, got %v", err)
	}
}

func TestLoadWeakSecret(t *testing.T) {
	t.Setenv("OINS_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for known weak secret")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"Abc123!x", true},
		{"abc123!x", true},
		{"abcdefgh", false},
		{"abc12345", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}

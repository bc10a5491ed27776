package main

import (
	"testing"

	"github.com/1broseidon/compwm/internal/config"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{in: "4194305", want: 0x400001},
		{in: "0x400001", want: 0x400001},
		{in: "window", wantErr: true},
		{in: "0x1ffffffff", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseWindowID(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseWindowID(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseWindowID(%q) = 0x%x, want 0x%x", tt.in, got, tt.want)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/etc/compwm.yaml", Line: 3, Column: 1}, "file:/etc/compwm.yaml:3:1"},
		{config.Source{Kind: config.SourceFile, File: "/etc/compwm.yaml"}, "file:/etc/compwm.yaml"},
		{config.Source{Kind: config.SourceEnv, Name: "COMPWM_LOG_LEVEL"}, "env:COMPWM_LOG_LEVEL"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestPrintSelection(t *testing.T) {
	tests := []struct {
		defaults, effective bool
		wantDefaults        bool
		wantErr             bool
	}{
		{},
		{effective: true},
		{defaults: true, wantDefaults: true},
		{defaults: true, effective: true, wantErr: true},
	}
	for _, tt := range tests {
		got, err := printSelection(tt.defaults, tt.effective)
		if tt.wantErr {
			if err == nil {
				t.Errorf("printSelection(%v, %v) expected error", tt.defaults, tt.effective)
			}
			continue
		}
		if err != nil {
			t.Errorf("printSelection(%v, %v) unexpected error: %v", tt.defaults, tt.effective, err)
			continue
		}
		if got != tt.wantDefaults {
			t.Errorf("printSelection(%v, %v) = %v, want %v", tt.defaults, tt.effective, got, tt.wantDefaults)
		}
	}
}

package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/dockbridge/internal/config"
	"github.com/1broseidon/dockbridge/internal/platform"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    platform.WindowID
		wantErr bool
	}{
		{"0x3a00007", 0x3a00007, false},
		{"60817415", 60817415, false},
		{" 0x10 ", 0x10, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"window", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseWindowID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseWindowID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseRect(t *testing.T) {
	got, err := parseRect("600, 1010,720,60")
	if err != nil {
		t.Fatalf("parseRect: %v", err)
	}
	if want := (platform.Rect{X: 600, Y: 1010, Width: 720, Height: 60}); got != want {
		t.Fatalf("parseRect = %+v, want %+v", got, want)
	}

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "0,0,-1,10"} {
		if _, err := parseRect(bad); err == nil {
			t.Errorf("parseRect(%q) expected error", bad)
		}
	}
}

func TestRectListFlag(t *testing.T) {
	fs := flag.NewFlagSet("blur", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var regions rectList
	fs.Var(&regions, "region", "")

	if err := fs.Parse([]string{"--region", "0,0,10,10", "--region", "5,5,20,20", "0x1"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(regions) != 2 || regions[1] != (platform.Rect{X: 5, Y: 5, Width: 20, Height: 20}) {
		t.Fatalf("regions = %+v", regions)
	}
	if got := regions.String(); got != "0,0,10,10 5,5,20,20" {
		t.Fatalf("String = %q", got)
	}
	if err := fs.Parse([]string{"--region", "bad"}); err == nil {
		t.Fatalf("expected invalid region to fail parsing")
	}
}

func TestParseCompositing(t *testing.T) {
	detected := func() bool { return true }
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"auto", true, false},
		{"", true, false},
		{"false", false, false},
		{"ON", true, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		got, err := parseCompositing(tt.in, detected)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseCompositing(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 10}, "file:/c.yaml:3:10"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceEnv, Name: "DOCKBRIDGE_DOCK_STYLE"}, "env:DOCKBRIDGE_DOCK_STYLE"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestCommonFlags_DisplayOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	fs := flag.NewFlagSet("active", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse([]string{"--display", ":5", "--config", t.TempDir() + "/missing.yaml"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := common.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Display != ":5" {
		t.Fatalf("display = %q, want :5", cfg.Display)
	}
}

func TestResolveColor(t *testing.T) {
	tty := func() bool { return true }
	pipe := func() bool { return false }

	if got, _ := resolveColor("auto", tty); !got {
		t.Fatalf("auto on a terminal should color")
	}
	if got, _ := resolveColor("auto", pipe); got {
		t.Fatalf("auto on a pipe should not color")
	}
	if got, _ := resolveColor("always", pipe); !got {
		t.Fatalf("always should color")
	}
	if got, _ := resolveColor("never", tty); got {
		t.Fatalf("never should not color")
	}
	if _, err := resolveColor("rainbow", tty); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRunConfigInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if rc := runConfig([]string{"init", "--path", path}); rc != 0 {
		t.Fatalf("config init rc = %d, want 0", rc)
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if res.Config.Dock.Direction != config.DefaultConfig().Dock.Direction {
		t.Fatalf("direction = %q, want default", res.Config.Dock.Direction)
	}

	if err := os.WriteFile(path, []byte("dock:\n  edge_margins: 4\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rc := runConfig([]string{"init", "--path", path}); rc != 1 {
		t.Fatalf("config init over existing file rc = %d, want 1", rc)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "dock:\n  edge_margins: 4\n" {
		t.Fatalf("existing config was overwritten: %q", data)
	}

	if rc := runConfig([]string{"init", "--path", path, "--force"}); rc != 0 {
		t.Fatalf("config init --force rc = %d, want 0", rc)
	}
}

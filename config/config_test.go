package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	src := "# simplesocket\n" +
		"port 7000\n" +
		"mode upper\n" +
		"maxconnect 16\n" +
		"reuseport yes\n" +
		"logdir /tmp/simplesocket\n" +
		"shutdowntimeout 3"
	p, err := parse(strings.NewReader(src))
	if err != nil {
		t.Error(err)
		return
	}
	if p.Port != 7000 {
		t.Error("int parse failed")
	}
	if p.Mode != "upper" {
		t.Error("string parse failed")
	}
	if p.MaxConnect != 16 || p.ShutdownTimeout != 3 {
		t.Error("int parse failed")
	}
	if !p.ReusePort {
		t.Error("bool parse failed")
	}
	if p.LogDir != "/tmp/simplesocket" {
		t.Error("path parse failed")
	}
}

func TestParseDefaults(t *testing.T) {
	p, err := parse(strings.NewReader("port 7001\n"))
	if err != nil {
		t.Error(err)
		return
	}
	d := Default()
	if p.Port != 7001 || p.Mode != d.Mode || p.ShutdownTimeout != d.ShutdownTimeout || p.LogDir != d.LogDir {
		t.Errorf("unexpected properties: %+v", p)
	}
}

func TestParseBadInt(t *testing.T) {
	_, err := parse(strings.NewReader("port abc\n"))
	if err == nil {
		t.Error("expect error")
	}
}

func TestSetup(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "simplesocket.conf")
	if err := os.WriteFile(filename, []byte("port 7002\nmode ping\n"), 0644); err != nil {
		t.Fatal(err)
	}
	defer func() { Properties = Default() }()
	if err := Setup(filename); err != nil {
		t.Fatal(err)
	}
	if Properties.Port != 7002 || Properties.Mode != "ping" {
		t.Errorf("unexpected properties: %+v", Properties)
	}
	if err := Setup(filepath.Join(t.TempDir(), "missing.conf")); err == nil {
		t.Error("expect error for missing file")
	}
}

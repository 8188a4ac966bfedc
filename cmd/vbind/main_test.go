package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"vbind.yaml": "root: root.html\ndata: data.yaml\nlog:\n  level: error\ncomponents:\n  badge:\n    template: \"<em>{{label}}</em>\"\n",
		"root.html":  `<p>{{label | upper}}</p><badge></badge>`,
		"data.yaml":  "label: new\n",
		"other.html": `<h2>{{label}}</h2>`,
		"other.yaml": "label: other\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	config := filepath.Join(dir, "vbind.yaml")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"configured root", []string{"render", "--config", config}, `<p>NEW</p><em>new</em>`},
		{
			"template override",
			[]string{"render", "--config", config,
				"--template", filepath.Join(dir, "other.html"),
				"--data", filepath.Join(dir, "other.yaml")},
			`<h2>other</h2>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("render error = %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMissingConfig(t *testing.T) {
	_, err := execute(t, "render", "--config", filepath.Join(t.TempDir(), "vbind.yaml"))
	if err == nil {
		t.Fatal("render with a missing config succeeded")
	}
}

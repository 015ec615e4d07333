package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vnykmshr/fanout/internal/testutil"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		input   string
		want    []string
		wantErr bool
	}{
		{"text lines", FormatText, "alpha\n\n  beta  \ngamma\n", []string{"alpha", "beta", "gamma"}, false},
		{"empty text", FormatText, "", []string{}, false},
		{"json strings", FormatJSON, `["a", "b"]`, []string{"a", "b"}, false},
		{"json mixed scalars", FormatJSON, `["a", 2, true, null]`, []string{"a", "2", "true", ""}, false},
		{"json object", FormatJSON, `{"a": 1}`, nil, true},
		{"yaml sequence", FormatYAML, "- one\n- 2\n- 3.5\n", []string{"one", "2", "3.5"}, false},
		{"empty yaml", FormatYAML, "", []string{}, false},
		{"yaml mapping", FormatYAML, "a: b\n", nil, true},
		{"yaml items document", FormatYAML, "items:\n  - x\n  - 7\n", []string{"x", "7"}, false},
		{"yaml scalar", FormatYAML, "just text\n", nil, true},
		{"toml items", FormatTOML, "items = [\"x\", \"y\", 3]\n", []string{"x", "y", "3"}, false},
		{"toml without items", FormatTOML, "other = 1\n", []string{}, false},
		{"broken toml", FormatTOML, "items = [", nil, true},
		{"unknown format", Format("csv"), "a,b", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(strings.NewReader(tt.input), tt.format)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertSliceEqual(t, got, tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"list.txt":   "a\nb\n",
		"list.json":  `["a","b"]`,
		"list.yaml":  "- a\n- b\n",
		"list.toml":  "items = [\"a\", \"b\"]\n",
		"list.input": "a\nb",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o600))

			got, err := LoadFile(path)
			testutil.AssertNoError(t, err)
			testutil.AssertSliceEqual(t, got, []string{"a", "b"})
		})
	}

	_, err := LoadFile(filepath.Join(dir, "missing.txt"))
	testutil.AssertError(t, err)
}

func TestFormats(t *testing.T) {
	testutil.AssertEqual(t, DetectFormat("x.JSON"), FormatJSON)
	testutil.AssertEqual(t, DetectFormat("x.yml"), FormatYAML)
	testutil.AssertEqual(t, DetectFormat("x.toml"), FormatTOML)
	testutil.AssertEqual(t, DetectFormat("x"), FormatText)

	for name, want := range map[string]Format{"": FormatText, "txt": FormatText, "YAML": FormatYAML, "toml": FormatTOML} {
		got, err := ParseFormat(name)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, got, want)
	}
	_, err := ParseFormat("xml")
	testutil.AssertError(t, err)
}

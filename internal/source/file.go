package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names an input document format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat parses a format name. The empty string means FormatText.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown input format %q (use text, json, yaml or toml)", name)
	}
}

// DetectFormat guesses the format from a file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatText
	}
}

// LoadFile reads a collection from path, detecting the format from its
// extension.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	items, err := Load(f, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Load reads a collection in the given format.
func Load(r io.Reader, format Format) ([]string, error) {
	switch format {
	case FormatText:
		return loadText(r)
	case FormatJSON:
		var raw []any
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode JSON array: %w", err)
		}
		return stringify(raw), nil
	case FormatYAML:
		var doc any
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode YAML document: %w", err)
		}
		return yamlItems(doc)
	case FormatTOML:
		var doc struct {
			Items []any `toml:"items"`
		}
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode TOML document: %w", err)
		}
		return stringify(doc.Items), nil
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

func loadText(r io.Reader) ([]string, error) {
	var items []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// yamlItems accepts a bare sequence or a mapping with an items sequence.
func yamlItems(doc any) ([]string, error) {
	switch v := doc.(type) {
	case nil:
		return []string{}, nil
	case []any:
		return stringify(v), nil
	case map[string]any:
		items, ok := v["items"].([]any)
		if !ok {
			return nil, fmt.Errorf("YAML document has no items sequence")
		}
		return stringify(items), nil
	default:
		return nil, fmt.Errorf("YAML document must be a sequence, got %T", doc)
	}
}

func stringify(raw []any) []string {
	items := make([]string, len(raw))
	for i, v := range raw {
		switch s := v.(type) {
		case string:
			items[i] = s
		case nil:
			items[i] = ""
		default:
			items[i] = fmt.Sprint(s)
		}
	}
	return items
}

package parallel

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec moves values across the isolation boundary of an IsolatedPool. Every
// input is marshaled before submission and unmarshaled into fresh memory by
// the worker; outputs travel back the same way.
type Codec interface {
	// Name identifies the codec in logs and configuration.
	Name() string

	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into the value pointed to by v.
	Unmarshal(data []byte, v any) error
}

// GobCodec encodes with encoding/gob. It preserves concrete Go types, so it is
// the default. Custom types carried inside interface values (for example in
// Args) must be registered with gob.Register. Empty slices and maps inside a
// value decode as nil; use JSONCodec when that distinction matters.
type GobCodec struct{}

// Name returns "gob".
func (GobCodec) Name() string { return "gob" }

// Marshal encodes v with a fresh gob encoder.
func (GobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data with a fresh gob decoder.
func (GobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// JSONCodec encodes with encoding/json. Numbers held in interface values
// decode as float64.
type JSONCodec struct{}

// Name returns "json".
func (JSONCodec) Name() string { return "json" }

// Marshal encodes v as JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes JSON data into v.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// YAMLCodec encodes with gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Name returns "yaml".
func (YAMLCodec) Name() string { return "yaml" }

// Marshal encodes v as YAML.
func (YAMLCodec) Marshal(v any) (out []byte, err error) {
	// yaml.v3 panics on some unsupported kinds (channels, functions).
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("yaml: cannot marshal %T: %v", v, r)
		}
	}()
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// Codecs lists the names accepted by CodecByName.
func Codecs() []string {
	return []string{"gob", "json", "yaml"}
}

// CodecByName returns the codec registered under name (case-insensitive).
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gob":
		return GobCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (available: %s)", name, strings.Join(Codecs(), ", "))
	}
}

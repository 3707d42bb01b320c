package guardrail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// fileLimits is the wire representation of a LimitConfig. Durations are
// Go duration strings ("90s", "2m30s") in every format.
type fileLimits struct {
	MaxSteps   *int64   `yaml:"max_steps" toml:"max_steps" json:"max_steps"`
	MaxRuntime *string  `yaml:"max_runtime" toml:"max_runtime" json:"max_runtime"`
	MaxTokens  *int64   `yaml:"max_tokens" toml:"max_tokens" json:"max_tokens"`
	MaxCost    *float64 `yaml:"max_cost" toml:"max_cost" json:"max_cost"`
}

// limitsSchemaRaw is the JSON Schema for JSON limit documents. YAML and TOML
// decoding is strict enough on its own; JSON documents usually come from
// other systems, so they are validated before decoding.
var limitsSchemaRaw = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"max_steps":   map[string]any{"type": "integer"},
		"max_runtime": map[string]any{"type": "string"},
		"max_tokens":  map[string]any{"type": "integer"},
		"max_cost":    map[string]any{"type": "number"},
	},
}

var (
	limitsSchemaOnce sync.Once
	limitsSchema     *jsonschema.Schema
	limitsSchemaErr  error
)

func compiledLimitsSchema() (*jsonschema.Schema, error) {
	limitsSchemaOnce.Do(func() {
		raw, err := json.Marshal(limitsSchemaRaw)
		if err != nil {
			limitsSchemaErr = fmt.Errorf("marshal limits schema: %w", err)
			return
		}
		data, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
		if err != nil {
			limitsSchemaErr = fmt.Errorf("parse limits schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("limits.json", data); err != nil {
			limitsSchemaErr = fmt.Errorf("add limits schema resource: %w", err)
			return
		}
		limitsSchema, limitsSchemaErr = c.Compile("limits.json")
	})
	return limitsSchema, limitsSchemaErr
}

// LoadFile reads a LimitConfig from a YAML (.yaml/.yml), TOML (.toml), or
// JSON (.json) file. JSON documents are validated against a schema before
// decoding; unknown keys are rejected. The resulting config is validated,
// so a file with a negative ceiling fails here, not at check time.
//
// Example YAML:
//
//	max_steps: 50
//	max_runtime: 2m
//	max_tokens: 100000
//	max_cost: 5.0
func LoadFile(path string) (*LimitConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limit config: %w", err)
	}

	var file fileLimits
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse yaml limit config: %w", err)
		}
	case ".toml":
		meta, err := toml.Decode(string(raw), &file)
		if err != nil {
			return nil, fmt.Errorf("parse toml limit config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q",
				ErrInvalidConfig, undecoded[0].String())
		}
	case ".json":
		schema, err := compiledLimitsSchema()
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse json limit config: %w", err)
		}
		if err := schema.Validate(doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("decode json limit config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q",
			ErrInvalidConfig, ext)
	}

	return file.toConfig()
}

// toConfig converts the wire representation into a validated LimitConfig.
func (f *fileLimits) toConfig() (*LimitConfig, error) {
	cfg := NewLimitConfig()
	cfg.MaxSteps = f.MaxSteps
	cfg.MaxTokens = f.MaxTokens
	cfg.MaxCost = f.MaxCost
	if f.MaxRuntime != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*f.MaxRuntime))
		if err != nil {
			return nil, fmt.Errorf("%w: parse max_runtime: %v",
				ErrInvalidConfig, err)
		}
		cfg.MaxRuntime = &d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

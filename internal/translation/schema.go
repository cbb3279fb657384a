package translation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var schemaFiles = map[Mode]string{
	ModeSimple:   "simple.schema.json",
	ModeDetailed: "detailed.schema.json",
}

type compiledSchemas struct {
	raw      map[Mode]json.RawMessage
	compiled map[Mode]*jsonschema.Schema
}

var (
	compileOnce    sync.Once
	compiledSet    *compiledSchemas
	compiledSetErr error
)

func loadSchemas() (*compiledSchemas, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		set := &compiledSchemas{
			raw:      make(map[Mode]json.RawMessage, len(schemaFiles)),
			compiled: make(map[Mode]*jsonschema.Schema, len(schemaFiles)),
		}
		for mode, name := range schemaFiles {
			body, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compiledSetErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(body)); err != nil {
				compiledSetErr = fmt.Errorf("add schema resource %s: %w", name, err)
				return
			}
			set.raw[mode] = json.RawMessage(body)
		}
		for mode, name := range schemaFiles {
			schema, err := compiler.Compile(name)
			if err != nil {
				compiledSetErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			set.compiled[mode] = schema
		}
		compiledSet = set
	})

	if compiledSetErr != nil {
		return nil, compiledSetErr
	}
	if compiledSet == nil {
		return nil, fmt.Errorf("schemas not initialized")
	}
	return compiledSet, nil
}

// responseSchema returns the JSON schema the generator must follow for mode.
func responseSchema(mode Mode) (json.RawMessage, error) {
	set, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	raw, ok := set.raw[mode]
	if !ok {
		return nil, fmt.Errorf("no schema for mode %q", mode)
	}
	return raw, nil
}

// decodeGenerated validates raw generator output against the mode schema and
// decodes it into a Result.
func decodeGenerated(mode Mode, raw string) (Result, error) {
	payload := []byte(stripCodeFence(raw))

	value, err := decodeStrictJSON(payload)
	if err != nil {
		return Result{}, fmt.Errorf("decode generated JSON: %w", err)
	}

	set, err := loadSchemas()
	if err != nil {
		return Result{}, fmt.Errorf("load schema: %w", err)
	}
	schema, ok := set.compiled[mode]
	if !ok {
		return Result{}, fmt.Errorf("no schema for mode %q", mode)
	}
	if err := schema.Validate(value); err != nil {
		return Result{}, fmt.Errorf("schema validation failed: %w", err)
	}

	result := Result{Mode: mode}
	switch mode {
	case ModeSimple:
		var simple struct {
			Translation string `json:"translation"`
		}
		if err := json.Unmarshal(payload, &simple); err != nil {
			return Result{}, fmt.Errorf("unmarshal simple translation: %w", err)
		}
		result.Translation = strings.TrimSpace(simple.Translation)
	case ModeDetailed:
		var detailed DetailedResult
		if err := json.Unmarshal(payload, &detailed); err != nil {
			return Result{}, fmt.Errorf("unmarshal detailed translation: %w", err)
		}
		result.Detailed = &detailed
	}

	if err := result.Validate(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}
	return value, nil
}

// stripCodeFence removes a surrounding ``` fence, which some local models add
// even when asked for bare JSON.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		return ""
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

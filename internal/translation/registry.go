package translation

import (
	"fmt"
	"sort"
	"strings"

	"askverba.app/server/internal/config"
)

const DefaultGeneratorName = "openai"

// Registry stores generators and resolves a default one.
type Registry struct {
	generators       map[string]Generator
	defaultGenerator string
}

func NewRegistry(defaultGenerator string) *Registry {
	normalizedDefault := normalizeGeneratorName(defaultGenerator)
	if normalizedDefault == "" {
		normalizedDefault = DefaultGeneratorName
	}

	return &Registry{
		generators:       make(map[string]Generator),
		defaultGenerator: normalizedDefault,
	}
}

// NewRegistryFromConfig registers every generator the configuration can
// support. The configured AI_PROVIDER becomes the default.
func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	registry := NewRegistry(cfg.AIProvider)
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		if err := registry.Register(NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.AIModel)); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(cfg.LocalAIEndpoint) != "" {
		if err := registry.Register(NewLocalGenerator(cfg.LocalAIEndpoint, cfg.LocalAIModel)); err != nil {
			return nil, err
		}
	}

	if _, err := registry.Generator(""); err != nil {
		return nil, err
	}
	return registry, nil
}

func (r *Registry) Register(generator Generator) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if generator == nil {
		return fmt.Errorf("generator is nil")
	}
	name := normalizeGeneratorName(generator.Name())
	if name == "" {
		return fmt.Errorf("generator name is required")
	}
	r.generators[name] = generator
	return nil
}

// Generator resolves a generator by name. Empty names use the default.
func (r *Registry) Generator(name string) (Generator, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if len(r.generators) == 0 {
		return nil, fmt.Errorf("no translation generators are registered")
	}

	resolvedName := normalizeGeneratorName(name)
	if resolvedName == "" {
		resolvedName = r.defaultGenerator
	}
	generator, ok := r.generators[resolvedName]
	if ok {
		return generator, nil
	}

	return nil, fmt.Errorf("translation generator %q is not registered (available: %s)", resolvedName, strings.Join(r.Names(), ", "))
}

func (r *Registry) DefaultGenerator() string {
	if r == nil {
		return ""
	}
	return r.defaultGenerator
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeGeneratorName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

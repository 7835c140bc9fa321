package llm

import (
	"fmt"
	"sort"
	"strings"

	"NewsImpact/internal/config"
	"NewsImpact/internal/ports"
)

// Factory builds a Completer for one provider.
type Factory func(cfg config.LLMConfig) ports.Completer

// Registry keeps a mapping from provider names to their constructors.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry knows the gemini, anthropic and openai providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(config.ProviderGemini, func(cfg config.LLMConfig) ports.Completer { return NewGeminiClient(cfg) })
	r.Register(config.ProviderAnthropic, func(cfg config.LLMConfig) ports.Completer { return NewAnthropicClient(cfg) })
	r.Register(config.ProviderOpenAI, func(cfg config.LLMConfig) ports.Completer { return NewOpenAIClient(cfg) })
	return r
}

// Register adds or replaces a provider constructor.
func (r *Registry) Register(name string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[strings.ToLower(name)] = factory
}

// Resolve returns a constructor by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Factory, error) {
	if factory, ok := r.factories[strings.ToLower(strings.TrimSpace(name))]; ok {
		return factory, nil
	}
	return nil, fmt.Errorf("llm provider %s is not registered (known: %s)", name, strings.Join(r.names(), ", "))
}

// Build resolves the configured provider and applies the request-rate cap.
func (r *Registry) Build(cfg config.LLMConfig) (ports.Completer, error) {
	factory, err := r.Resolve(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return NewThrottled(factory(cfg), cfg.RequestsPerMinute), nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package extension registers named content collaborators so a deployment
// can pick one through configuration instead of code. The built-in template
// collaborator registers itself under "template"; host applications add their
// own providers (LLM-backed, remote, …) before assembling the engine.
package extension

import (
	"fmt"
	"sort"
	"sync"

	"github.com/viant/reviso/service/content"
	"github.com/viant/reviso/service/content/template"
)

// Provider constructs a content collaborator.
type Provider func() content.Service

// Registry maps provider names to constructors.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces a provider.
func (r *Registry) Register(name string, provider Provider) {
	if name == "" || provider == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// Lookup constructs the named collaborator.
func (r *Registry) Lookup(name string) (content.Service, error) {
	r.mu.RLock()
	provider, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown content provider %q, registered: %v", name, r.Names())
	}
	return provider(), nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplateProvider is the name of the built-in collaborator.
const TemplateProvider = "template"

var defaultRegistry = NewRegistry()

func init() {
	defaultRegistry.Register(TemplateProvider, func() content.Service { return template.New() })
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a provider to the process-wide registry.
func Register(name string, provider Provider) {
	defaultRegistry.Register(name, provider)
}

// Lookup constructs a collaborator from the process-wide registry.
func Lookup(name string) (content.Service, error) {
	return defaultRegistry.Lookup(name)
}

package reviso

import (
	"fmt"

	"github.com/viant/reviso/extension"
	"github.com/viant/reviso/service/event"
	"github.com/viant/reviso/service/messaging"
	"github.com/viant/reviso/service/processor"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from YAML or JSON; the zero-value is useful – all nested
// fields inherit their package defaults via DefaultConfig.
type Config struct {
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Workflow  WorkflowConfig  `json:"workflow" yaml:"workflow"`
	Events    EventsConfig    `json:"events" yaml:"events"`
	Content   ContentConfig   `json:"content" yaml:"content"`
	Messaging MessagingConfig `json:"messaging" yaml:"messaging"`
}

// ProcessorConfig sizes the worker pool.
type ProcessorConfig struct {
	WorkerCount int `json:"workers" yaml:"workers"`
}

// WorkflowConfig carries per-task defaults.
type WorkflowConfig struct {
	DefaultMaxIterations int `json:"defaultMaxIterations" yaml:"defaultMaxIterations"`
}

// EventsConfig sizes observer buffers.
type EventsConfig struct {
	Buffer int `json:"buffer" yaml:"buffer"`
}

// ContentConfig selects the content collaborator by registered provider name.
type ContentConfig struct {
	Provider string `json:"provider" yaml:"provider"`
}

// MessagingConfig selects the run queue implementation. BasePath applies to
// the file-system vendor only.
type MessagingConfig struct {
	Vendor   string `json:"vendor" yaml:"vendor"`
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults. Callers
// may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Processor: ProcessorConfig{WorkerCount: processor.DefaultWorkerCount},
		Workflow:  WorkflowConfig{DefaultMaxIterations: 3},
		Events:    EventsConfig{Buffer: event.DefaultBuffer},
		Content:   ContentConfig{Provider: extension.TemplateProvider},
		Messaging: MessagingConfig{Vendor: string(messaging.VendorMemory)},
	}
}

// Validate returns an error describing invalid settings, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Processor.WorkerCount <= 0 {
		return fmt.Errorf("processor.workers must be > 0")
	}
	if c.Workflow.DefaultMaxIterations <= 0 {
		return fmt.Errorf("workflow.defaultMaxIterations must be > 0")
	}
	if c.Events.Buffer <= 0 {
		return fmt.Errorf("events.buffer must be > 0")
	}
	if c.Content.Provider == "" {
		return fmt.Errorf("content.provider must be set")
	}
	switch messaging.Vendor(c.Messaging.Vendor) {
	case messaging.VendorMemory, messaging.VendorFS:
	default:
		return fmt.Errorf("messaging.vendor must be %q or %q", messaging.VendorMemory, messaging.VendorFS)
	}
	return nil
}

// ParseConfig decodes YAML data on top of the defaults and validates the
// result.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

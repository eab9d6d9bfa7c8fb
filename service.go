package reviso

import (
	"log"

	"github.com/viant/afs"
	"github.com/viant/reviso/extension"
	"github.com/viant/reviso/policy"
	"github.com/viant/reviso/service/approval"
	apmemory "github.com/viant/reviso/service/approval/memory"
	"github.com/viant/reviso/service/content"
	"github.com/viant/reviso/service/content/template"
	"github.com/viant/reviso/service/event"
	"github.com/viant/reviso/service/executor"
	"github.com/viant/reviso/service/messaging"
	fsqueue "github.com/viant/reviso/service/messaging/fs"
	mmemory "github.com/viant/reviso/service/messaging/memory"
	"github.com/viant/reviso/service/processor"
	"github.com/viant/reviso/service/registry"
	"github.com/viant/reviso/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Version identifies the engine in traces.
const Version = "0.1.0"

// Service assembles the engine: registry, executor, processor, approval and
// the event feed, each replaceable through options.
type Service struct {
	config    *Config
	content   content.Service
	approver  approval.Service
	queue     messaging.Queue[registry.Run]
	feed      *event.Feed
	registry  *registry.Service
	executor  *executor.Service
	processor *processor.Service
	runtime   *Runtime

	policy *policy.Policy

	tracingEnabled  bool
	tracingOutput   string
	tracingExporter sdktrace.SpanExporter
}

// New creates a fully wired engine. Without options it runs entirely
// in-process: template content, in-memory approval and queueing.
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.registry = registry.New(s.queue, s.approver, s.feed)
	s.executor = executor.New(s.content, s.approver, s.feed, executor.WithPolicy(s.policy))
	s.processor = processor.New(
		processor.Config{WorkerCount: s.config.Processor.WorkerCount},
		s.queue,
		s.registry,
		s.executor)
	s.runtime = &Runtime{
		config:    s.config,
		registry:  s.registry,
		approver:  s.approver,
		processor: s.processor,
		feed:      s.feed,
	}
	if s.tracingEnabled {
		if s.tracingExporter != nil {
			_ = tracing.InitWithExporter("reviso", Version, s.tracingExporter)
		} else {
			_ = tracing.Init("reviso", Version, s.tracingOutput)
		}
	}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.content == nil {
		provider := s.config.Content.Provider
		if provider == "" {
			provider = extension.TemplateProvider
		}
		if collaborator, err := extension.Lookup(provider); err == nil {
			s.content = collaborator
		} else {
			log.Printf("reviso: %v, falling back to the template collaborator", err)
			s.content = template.New()
		}
	}
	if s.feed == nil {
		s.feed = event.NewFeed(s.config.Events.Buffer)
	}
	if s.queue == nil {
		switch messaging.Vendor(s.config.Messaging.Vendor) {
		case messaging.VendorFS:
			config := fsqueue.DefaultConfig()
			if s.config.Messaging.BasePath != "" {
				config.BasePath = s.config.Messaging.BasePath
			}
			queue, err := fsqueue.NewQueue[registry.Run](afs.New(), config)
			if err != nil {
				log.Printf("reviso: %v, falling back to the in-memory queue", err)
				s.queue = mmemory.NewQueue[registry.Run](mmemory.DefaultConfig())
			} else {
				s.queue = queue
			}
		default:
			s.queue = mmemory.NewQueue[registry.Run](mmemory.DefaultConfig())
		}
	}
	if s.approver == nil {
		s.approver = apmemory.New()
	}
}

// Runtime returns the task-facing facade.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Approval exposes the approval service for external reviewers.
func (s *Service) Approval() approval.Service {
	return s.approver
}

// Registry exposes the task registry.
func (s *Service) Registry() *registry.Service {
	return s.registry
}

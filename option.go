package reviso

import (
	"github.com/viant/reviso/policy"
	"github.com/viant/reviso/service/approval"
	"github.com/viant/reviso/service/content"
	"github.com/viant/reviso/service/event"
	"github.com/viant/reviso/service/messaging"
	"github.com/viant/reviso/service/registry"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the engine assembly.
type Option func(s *Service)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithContentService sets the content collaborator.
func WithContentService(svc content.Service) Option {
	return func(s *Service) {
		s.content = svc
	}
}

// WithApprovalService sets the approval service.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) {
		s.approver = svc
	}
}

// WithQueue sets the run scheduling queue.
func WithQueue(queue messaging.Queue[registry.Run]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithEventFeed sets the progress feed.
func WithEventFeed(feed *event.Feed) Option {
	return func(s *Service) {
		s.feed = feed
	}
}

// WithProcessorWorkers overrides the worker pool size.
func WithProcessorWorkers(count int) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Processor.WorkerCount = count
	}
}

// WithEventBuffer overrides the observer buffer size.
func WithEventBuffer(buffer int) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Events.Buffer = buffer
	}
}

// WithPolicy sets the default review policy applied at every approval gate.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithTracing enables stdout tracing; an empty outputFile writes to stdout.
func WithTracing(outputFile string) Option {
	return func(s *Service) {
		s.tracingEnabled = true
		s.tracingOutput = outputFile
	}
}

// WithTracingExporter enables tracing through the supplied exporter.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingEnabled = true
		s.tracingExporter = exporter
	}
}

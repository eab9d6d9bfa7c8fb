// Package content defines the narrow capability interface through which the
// engine consumes text generation. Research runs once per task; Draft and
// Critique drive the refine loop. Implementations may call a language model,
// a remote service or a deterministic template; any failure they return is
// surfaced as an upstream failure that fails the owning task.
package content

import (
	"context"

	"github.com/viant/reviso/model"
)

// Service is the external content capability.
type Service interface {
	// Research produces the findings for a topic. Called exactly once per
	// task, before the first draft.
	Research(ctx context.Context, topic string) (map[string]interface{}, error)

	// Draft creates or refines a draft. An empty feedback list requests the
	// initial draft; otherwise the draft must address the listed critiques,
	// weighing human-origin entries over AI ones.
	Draft(ctx context.Context, topic string, research map[string]interface{}, feedback []model.Critique) (string, error)

	// Critique analyses a draft against the research. A nil/empty result
	// means the draft is judged sufficient.
	Critique(ctx context.Context, draft string, research map[string]interface{}) ([]model.Critique, error)
}

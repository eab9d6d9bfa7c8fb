// Package template provides the built-in content collaborator. It is fully
// deterministic: research is canned, drafting composes the post from the
// findings and the outstanding feedback, and critique applies fixed editorial
// checks. It keeps the engine usable out of the box and gives tests a
// collaborator with predictable convergence.
package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/reviso/model"
	"github.com/viant/reviso/service/content/parser"
	"github.com/viant/structology/conv"
)

// Findings is the typed view of a research map. Research stays an opaque map
// on the wire; implementations convert to this shape on use.
type Findings struct {
	Topic              string       `json:"topic"`
	KeyPoints          []string     `json:"key_points"`
	CompetitorInsights []string     `json:"competitor_insights"`
	TrendingHashtags   []string     `json:"trending_hashtags"`
	Audience           Demographics `json:"audience_demographics"`
	SuccessCriteria    []string     `json:"success_criteria"`
}

// Demographics describes the target audience within Findings.
type Demographics struct {
	AgeRange  string   `json:"age_range"`
	Interests []string `json:"interests"`
	Platforms []string `json:"platforms"`
}

// Service implements content.Service with template-based generation.
type Service struct {
	converter *conv.Converter
}

// New creates the template collaborator.
func New() *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	return &Service{converter: conv.NewConverter(options)}
}

// Research returns canned findings for the topic.
func (s *Service) Research(ctx context.Context, topic string) (map[string]interface{}, error) {
	return map[string]interface{}{
		"topic": topic,
		"key_points": []string{
			"Current market trends show high engagement with authentic content",
			"Target audience prefers concise, value-driven messaging",
			"Visual elements increase engagement by 40%",
			"Best posting times are typically 9-11 AM and 2-4 PM",
		},
		"competitor_insights": []string{
			"Top competitors focus on storytelling approaches",
			"User-generated content performs 50% better",
			"Behind-the-scenes content drives authenticity",
		},
		"trending_hashtags": []string{
			"#marketing2024", "#digitalstrategy", "#contenttips",
			"#socialmedia", "#brandstory",
		},
		"audience_demographics": map[string]interface{}{
			"age_range": "25-45",
			"interests": []string{"business", "entrepreneurship", "digital marketing"},
			"platforms": []string{"LinkedIn", "Instagram", "Twitter"},
		},
		"success_criteria": []string{
			"Clear value proposition",
			"Engaging hook",
			"Strong call-to-action",
			"Appropriate tone for target audience",
			"Optimal length for platform",
		},
	}, nil
}

// Draft composes a post from the findings. With no feedback it produces a
// deliberately bare first cut; with feedback it extends the post to address
// each critique, honouring human-origin critiques first.
func (s *Service) Draft(ctx context.Context, topic string, research map[string]interface{}, feedback []model.Critique) (string, error) {
	findings := &Findings{}
	if err := s.converter.Convert(research, findings); err != nil {
		return "", fmt.Errorf("failed to interpret research findings: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Thinking about %v? Here is why it matters.\n\n", topic)
	for i, point := range findings.KeyPoints {
		if i == 2 {
			break
		}
		fmt.Fprintf(&b, "• %v\n", point)
	}
	if len(findings.Audience.Interests) > 0 {
		fmt.Fprintf(&b, "\nMade for people who live and breathe %v.\n", strings.Join(findings.Audience.Interests, ", "))
	}
	if len(feedback) == 0 {
		return b.String(), nil
	}

	var wantHashtags, wantCallToAction, general bool
	for _, note := range orderFeedback(feedback) {
		lower := strings.ToLower(note.Text)
		switch {
		case strings.Contains(lower, "hashtag"):
			wantHashtags = true
		case strings.Contains(lower, "call-to-action") || strings.Contains(lower, "call to action"):
			wantCallToAction = true
		default:
			general = true
		}
	}
	if general && len(findings.SuccessCriteria) > 0 {
		fmt.Fprintf(&b, "\nWhy it works: %v, delivered without the fluff.\n", strings.ToLower(findings.SuccessCriteria[0]))
	}
	if wantCallToAction || general {
		b.WriteString("\nReady to get started? Join us today.\n")
	}
	if wantHashtags || general {
		if tags := firstN(findings.TrendingHashtags, 3); len(tags) > 0 {
			fmt.Fprintf(&b, "\n%v\n", strings.Join(tags, " "))
		}
	}
	return b.String(), nil
}

// Critique applies the editorial checks derived from the success criteria and
// returns the resulting critiques, or nil when the draft passes all of them.
func (s *Service) Critique(ctx context.Context, draft string, research map[string]interface{}) ([]model.Critique, error) {
	findings := &Findings{}
	if err := s.converter.Convert(research, findings); err != nil {
		return nil, fmt.Errorf("failed to interpret research findings: %w", err)
	}
	var issues []string
	if !strings.Contains(draft, "#") {
		suggestion := ""
		if tags := firstN(findings.TrendingHashtags, 3); len(tags) > 0 {
			suggestion = " such as " + strings.Join(tags, ", ")
		}
		issues = append(issues, "Add trending hashtags"+suggestion+" to improve discoverability")
	}
	if !strings.Contains(strings.ToLower(draft), "join us") {
		issues = append(issues, "Close with a clear call-to-action so readers know the next step")
	}
	response := parser.ReadyMarker
	if len(issues) > 0 {
		var lines []string
		for i, issue := range issues {
			lines = append(lines, fmt.Sprintf("%d. %v", i+1, issue))
		}
		response = strings.Join(lines, "\n")
	}
	var result []model.Critique
	for _, item := range parser.ParseCritiques(response) {
		result = append(result, model.Critique{Text: item, Origin: model.OriginAI})
	}
	return result, nil
}

// orderFeedback returns the critiques with human-origin entries first,
// preserving relative order within each origin.
func orderFeedback(feedback []model.Critique) []model.Critique {
	ordered := make([]model.Critique, 0, len(feedback))
	for _, note := range feedback {
		if note.Origin == model.OriginHuman {
			ordered = append(ordered, note)
		}
	}
	for _, note := range feedback {
		if note.Origin != model.OriginHuman {
			ordered = append(ordered, note)
		}
	}
	return ordered
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

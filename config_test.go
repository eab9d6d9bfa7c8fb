package reviso

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfig(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      *Config
		expectErr   bool
	}{
		{
			description: "empty input keeps defaults",
			input:       "",
			expect:      DefaultConfig(),
		},
		{
			description: "partial override",
			input: `
processor:
  workers: 2
workflow:
  defaultMaxIterations: 5
`,
			expect: &Config{
				Processor: ProcessorConfig{WorkerCount: 2},
				Workflow:  WorkflowConfig{DefaultMaxIterations: 5},
				Events:    DefaultConfig().Events,
				Content:   DefaultConfig().Content,
				Messaging: DefaultConfig().Messaging,
			},
		},
		{
			description: "invalid workers",
			input: `
processor:
  workers: -1
`,
			expectErr: true,
		},
		{
			description: "malformed yaml",
			input:       "processor: [",
			expectErr:   true,
		},
	}

	for _, testCase := range testCases {
		actual, err := ParseConfig([]byte(testCase.input))
		if testCase.expectErr {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

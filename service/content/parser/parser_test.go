package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCritiques(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      []string
	}{
		{
			description: "numbered list",
			input:       "1. Add more hashtags\n2. The hook is weak\n3. Missing a call-to-action",
			expect:      []string{"1. Add more hashtags", "2. The hook is weak", "3. Missing a call-to-action"},
		},
		{
			description: "dash bullets",
			input:       "- Tone is too formal\n- Shorten the second paragraph",
			expect:      []string{"- Tone is too formal", "- Shorten the second paragraph"},
		},
		{
			description: "mixed markers with noise lines",
			input:       "Here is my review:\n* Opening lacks a hook\n• No audience mention\nOverall decent.",
			expect:      []string{"* Opening lacks a hook", "• No audience mention"},
		},
		{
			description: "ready marker yields nothing",
			input:       "No critiques - the post is ready.",
			expect:      nil,
		},
		{
			description: "ready marker embedded in prose",
			input:       "Looks good to me.\nno critiques - the post is ready.",
			expect:      nil,
		},
		{
			description: "free prose becomes a single critique",
			input:       "The post reads well but buries the main benefit in the last sentence.",
			expect:      []string{"The post reads well but buries the main benefit in the last sentence."},
		},
		{
			description: "empty input",
			input:       "   \n  ",
			expect:      nil,
		},
		{
			description: "multi digit numbering",
			input:       "10. Trim the hashtag list\n11. Fix the typo in line two",
			expect:      []string{"10. Trim the hashtag list", "11. Fix the typo in line two"},
		},
		{
			description: "marker with no text is skipped",
			input:       "1.\n2. Real item",
			expect:      []string{"2. Real item"},
		},
	}

	for _, testCase := range testCases {
		actual := ParseCritiques(testCase.input)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

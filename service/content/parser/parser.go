// Package parser extracts critique items from a critic response. Responses
// arrive as loosely formatted text: numbered or bulleted lines, a sentinel
// phrase when the draft is judged ready, or free prose. The parser normalises
// all three shapes into a plain list of critique strings.
package parser

import (
	"strings"

	"github.com/viant/parsly"
)

// ReadyMarker is the sentinel a critic emits when it has no critiques.
const ReadyMarker = "No critiques - the post is ready."

// ParseCritiques extracts individual critique items from a critic response.
// It returns nil when the response is empty or contains the ready marker.
// List items keep their marker prefix; a response with no recognisable list
// structure is returned whole as a single critique.
func ParseCritiques(response string) []string {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil
	}
	if strings.Contains(strings.ToLower(response), strings.ToLower(ReadyMarker)) {
		return nil
	}
	var items []string
	cursor := parsly.NewCursor("", []byte(response), 0)
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAfterOptional(whitespaceToken, bulletToken)
		if matched.Code != bulletCode {
			skipLine(cursor)
			continue
		}
		marker := matched.Text(cursor)
		text := ""
		if item := cursor.MatchOne(itemToken); item.Code == itemCode {
			text = strings.TrimSpace(item.Text(cursor))
		}
		if text == "" {
			continue
		}
		items = append(items, marker+" "+text)
	}
	if len(items) == 0 {
		return []string{response}
	}
	return items
}

func skipLine(cursor *parsly.Cursor) {
	for cursor.Pos < cursor.InputSize {
		ch := cursor.Input[cursor.Pos]
		cursor.Pos++
		if ch == '\n' {
			return
		}
	}
}

package parser

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	bulletCode
	itemCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	bulletToken     = parsly.NewToken(bulletCode, "Bullet", newBulletMatcher())
	itemToken       = parsly.NewToken(itemCode, "Item", newItemMatcher())
)

func newBulletMatcher() parsly.Matcher { return &bulletMatcher{} }
func newItemMatcher() parsly.Matcher   { return &itemMatcher{} }

// bulletMatcher matches a list-item marker: "-", "*", the bullet rune or a
// digit sequence followed by a dot ("1.", "12.").
type bulletMatcher struct{}

func (m *bulletMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	switch input[pos] {
	case '-', '*':
		return 1
	}
	// UTF-8 encoded bullet rune.
	if input[pos] == 0xE2 && pos+2 < size && input[pos+1] == 0x80 && input[pos+2] == 0xA2 {
		return 3
	}
	matched := 0
	for i := pos; i < size && isDigit(input[i]); i++ {
		matched++
	}
	if matched > 0 && pos+matched < size && input[pos+matched] == '.' {
		return matched + 1
	}
	return 0
}

// itemMatcher captures the remainder of the current line.
type itemMatcher struct{}

func (m *itemMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == '\n' {
			break
		}
		matched++
	}
	return matched
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

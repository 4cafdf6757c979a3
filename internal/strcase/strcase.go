// Package strcase converts identifiers between camelCase, PascalCase, snake_case and kebab-case, and
// spells IDL names as Go identifiers.
package strcase

import (
	"regexp"
	"strings"
	"unicode"
)

var reSnakeStart = regexp.MustCompile(`_[a-z]`)

// CamelToSnake converts "marketGroup" to "market_group". Every upper case letter but the first starts a new word.
func CamelToSnake(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// SnakeToCamel converts "market_group" to "marketGroup".
func SnakeToCamel(name string) string {
	return reSnakeStart.ReplaceAllStringFunc(name, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

// PascalToSnake converts "MarketGroup" to "market_group".
func PascalToSnake(name string) string {
	if name == "" {
		return ""
	}
	return CamelToSnake(strings.ToLower(name[:1]) + name[1:])
}

// SnakeToPascal converts "market_group" to "MarketGroup".
func SnakeToPascal(name string) string {
	camel := SnakeToCamel(name)
	if camel == "" {
		return ""
	}
	return strings.ToUpper(camel[:1]) + camel[1:]
}

// KebabToSnake converts "market-group" to "market_group".
func KebabToSnake(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// SnakeToKebab converts "market_group" to "market-group".
func SnakeToKebab(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// Snake converts an IDL name in any of camelCase, PascalCase or snake_case to snake_case.
// Runs of capitals are one word: "SEED" becomes "seed" and "USDCMint" becomes "usdc_mint".
func Snake(name string) string {
	if strings.Contains(name, "_") {
		return strings.ToLower(name)
	}
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// initialisms are spelled all upper case in Go identifiers.
var initialisms = map[string]string{
	"id":  "ID",
	"ids": "IDs",
	"api": "API",
	"url": "URL",
	"ui":  "UI",
	"pda": "PDA",
}

// GoName returns the exported Go identifier for an IDL name: "program_id", "programId" and "ProgramId"
// all become "ProgramID".
func GoName(name string) string {
	var sb strings.Builder
	for _, word := range strings.Split(Snake(KebabToSnake(name)), "_") {
		if word == "" {
			continue
		}
		if initialism, found := initialisms[word]; found {
			sb.WriteString(initialism)
			continue
		}
		sb.WriteString(strings.ToUpper(word[:1]) + word[1:])
	}
	return sb.String()
}

// goKeywords can't be used as parameter names.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true, "default": true,
	"defer": true, "else": true, "fallthrough": true, "for": true, "func": true, "go": true, "goto": true,
	"if": true, "import": true, "interface": true, "map": true, "package": true, "range": true,
	"return": true, "select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// GoParam returns the unexported Go identifier for an IDL name, e.g. "lamports" or "seedPrefix".
// Keywords get a trailing underscore.
func GoParam(name string) string {
	exported := GoName(name)
	if exported == "" {
		return ""
	}
	param := strings.ToLower(exported[:1]) + exported[1:]
	if strings.ToUpper(exported) == exported {
		// A lone initialism is lowered as a whole: "ID" -> "id".
		param = strings.ToLower(exported)
	}
	if goKeywords[param] {
		param += "_"
	}
	return param
}

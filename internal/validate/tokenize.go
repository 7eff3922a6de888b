package validate

import "strings"

// The tokenizer is deliberately coarse: it only needs to surface table names
// following FROM/JOIN/INTO/UPDATE and column references (qualified or bare)
// for catalog lookup. Full SQL parsing is out of scope; anything the
// tokenizer cannot classify is left for the store prober to reject.

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPunct
	tokNumber
	tokString
)

type token struct {
	kind tokenKind
	text string
}

type columnRef struct {
	qualifier string // table name or alias, empty when unqualified
	name      string
}

type queryRefs struct {
	tables  []string            // as written, appearance order
	aliases map[string]string   // lowercase alias -> table name as written
	columns []columnRef         // appearance order
	ctes    map[string]struct{} // lowercase CTE names, never checked against the catalog
}

// keywords that can never be table or column references.
var sqlKeywords = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "and": {}, "or": {}, "not": {},
	"null": {}, "like": {}, "in": {}, "is": {}, "between": {}, "order": {},
	"group": {}, "by": {}, "having": {}, "limit": {}, "offset": {},
	"join": {}, "inner": {}, "left": {}, "right": {}, "outer": {}, "cross": {},
	"on": {}, "as": {}, "distinct": {}, "insert": {}, "into": {}, "values": {},
	"update": {}, "set": {}, "delete": {}, "case": {}, "when": {}, "then": {},
	"else": {}, "end": {}, "asc": {}, "desc": {}, "union": {}, "all": {},
	"exists": {}, "true": {}, "false": {}, "current_timestamp": {},
	"current_date": {}, "glob": {}, "escape": {}, "collate": {},
	"with": {}, "recursive": {},
}

func isKeyword(s string) bool {
	_, ok := sqlKeywords[strings.ToLower(s)]
	return ok
}

// lex splits query text into coarse tokens. String literals and comments are
// consumed whole so their contents never look like identifiers. Qualified
// references ("t.col", "t.*") become single ident tokens.
func lex(input string) []token {
	var toks []token
	i := 0
	n := len(input)

	for i < n {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '-' && i+1 < n && input[i+1] == '-':
			for i < n && input[i] != '\n' {
				i++
			}
		case ch == '/' && i+1 < n && input[i+1] == '*':
			i += 2
			for i+1 < n && !(input[i] == '*' && input[i+1] == '/') {
				i++
			}
			i += 2
		case ch == '\'' || ch == '"':
			quote := ch
			j := i + 1
			for j < n && input[j] != quote {
				j++
			}
			toks = append(toks, token{kind: tokString, text: input[i+1 : min(j, n)]})
			i = j + 1
		case ch >= '0' && ch <= '9':
			j := i
			for j < n && (input[j] >= '0' && input[j] <= '9' || input[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: input[i:j]})
			i = j
		case isIdentStart(ch):
			j := i
			for j < n && (isIdentStart(input[j]) || input[j] >= '0' && input[j] <= '9') {
				j++
			}
			// Absorb a qualified suffix: ".col" or ".*"
			if j+1 < n && input[j] == '.' && (isIdentStart(input[j+1]) || input[j+1] == '*') {
				j++
				if input[j] == '*' {
					j++
				} else {
					for j < n && (isIdentStart(input[j]) || input[j] >= '0' && input[j] <= '9') {
						j++
					}
				}
			}
			toks = append(toks, token{kind: tokIdent, text: input[i:j]})
			i = j
		default:
			toks = append(toks, token{kind: tokPunct, text: string(ch)})
			i++
		}
	}

	return toks
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// extractRefs pulls table and column references out of query text.
func extractRefs(queryText string) *queryRefs {
	toks := lex(queryText)
	refs := &queryRefs{
		aliases: make(map[string]string),
		ctes:    make(map[string]struct{}),
	}

	tablePositions := make(map[int]struct{})
	aliasPositions := make(map[int]struct{})

	// Pass 0: CTE definitions. The "name AS (" shape only occurs when
	// introducing a CTE; table aliases and output names are never followed
	// by an opening paren.
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].kind == tokIdent && !isKeyword(toks[i].text) &&
			toks[i+1].kind == tokIdent && strings.EqualFold(toks[i+1].text, "as") &&
			toks[i+2].kind == tokPunct && toks[i+2].text == "(" {
			refs.ctes[strings.ToLower(toks[i].text)] = struct{}{}
		}
	}

	// Pass 1: tables after FROM / JOIN / INTO / UPDATE, including
	// comma-separated lists, with optional aliases.
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind != tokIdent {
			continue
		}
		switch strings.ToLower(t.text) {
		case "from", "join", "into", "update":
		default:
			continue
		}

		j := i + 1
		for j < len(toks) {
			if toks[j].kind != tokIdent || isKeyword(toks[j].text) || strings.Contains(toks[j].text, ".") {
				break
			}
			name := toks[j].text
			refs.tables = append(refs.tables, name)
			tablePositions[j] = struct{}{}
			j++

			// Optional "AS alias" or bare alias.
			if j < len(toks) && toks[j].kind == tokIdent && strings.EqualFold(toks[j].text, "as") {
				j++
			}
			if j < len(toks) && toks[j].kind == tokIdent && !isKeyword(toks[j].text) && !strings.Contains(toks[j].text, ".") {
				refs.aliases[strings.ToLower(toks[j].text)] = name
				aliasPositions[j] = struct{}{}
				j++
			}

			// A comma continues the table list.
			if j < len(toks) && toks[j].kind == tokPunct && toks[j].text == "," {
				j++
				continue
			}
			break
		}
	}

	// Pass 2: column references. Every remaining identifier that is not a
	// keyword, a function name, an alias definition, or an AS target is
	// treated as a column reference.
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind != tokIdent || isKeyword(t.text) {
			continue
		}
		if _, used := tablePositions[i]; used {
			continue
		}
		if _, used := aliasPositions[i]; used {
			continue
		}
		if _, cte := refs.ctes[strings.ToLower(t.text)]; cte {
			continue
		}
		// Function call: identifier immediately followed by "(".
		if i+1 < len(toks) && toks[i+1].kind == tokPunct && toks[i+1].text == "(" {
			continue
		}
		// AS target names the output, it references nothing.
		if i > 0 && toks[i-1].kind == tokIdent && strings.EqualFold(toks[i-1].text, "as") {
			continue
		}
		// Bare alias without AS: an identifier directly following a value
		// expression names the output, same as an AS target.
		if i > 0 {
			prev := toks[i-1]
			switch {
			case prev.kind == tokIdent && !isKeyword(prev.text):
				continue
			case prev.kind == tokString || prev.kind == tokNumber:
				continue
			case prev.kind == tokPunct && (prev.text == "*" || prev.text == ")"):
				continue
			}
		}

		if qualifier, name, ok := strings.Cut(t.text, "."); ok {
			if name == "*" || strings.Contains(name, ".") {
				continue
			}
			refs.columns = append(refs.columns, columnRef{qualifier: qualifier, name: name})
			continue
		}
		refs.columns = append(refs.columns, columnRef{name: t.text})
	}

	return refs
}

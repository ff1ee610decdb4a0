package asm

import "armsim/pkg/token"

// tokenizeLine wraps token.Tokenize, unwrapping *token.SyntaxError so its
// message isn't double-prefixed by Diagnostic.Error().
func tokenizeLine(line string, lineNo int) ([]token.Token, error) {
	toks, err := token.Tokenize(line, lineNo)
	if err == nil {
		return toks, nil
	}
	if se, ok := err.(*token.SyntaxError); ok {
		return nil, plainError(se.Msg)
	}
	return nil, err
}

type plainError string

func (e plainError) Error() string { return string(e) }

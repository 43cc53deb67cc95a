package lexer

import "github.com/standardbeagle/asjs/internal/literal"

func intLiteral(v int64) literal.Integer     { return literal.NewInteger(v) }
func floatLiteral(v float64) literal.Float   { return literal.NewFloat(v) }

package syntax

import (
	"errors"
	"go/parser"
	"go/scanner"
	"go/token"
)

// Error is a syntax error reported while parsing.
type Error struct {
	Pos     token.Position
	Message string
}

func (e Error) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Message
	}

	return e.Message
}

// Parse parses a Go source file and builds its tree. Source under edit is frequently broken, so
// a partial tree is returned together with the syntax errors whenever the parser produced one.
// The returned tree is nil only when nothing could be parsed at all.
func Parse(name string, src []byte) (*Tree, []Error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, name, src, parser.AllErrors|parser.SkipObjectResolution)

	var errs []Error

	if err != nil {
		var list scanner.ErrorList
		if errors.As(err, &list) {
			for _, e := range list {
				errs = append(errs, Error{Pos: e.Pos, Message: e.Msg})
			}
		} else {
			errs = append(errs, Error{Message: err.Error()})
		}
	}

	if file == nil {
		return nil, errs
	}

	return Build(fset, name, file), errs
}

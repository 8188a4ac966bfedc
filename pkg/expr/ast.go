package expr

import "strings"

// KeywordThis names the current component instance.
const KeywordThis = "this"

// Word is one token of an expression: a literal value or a placeholder for
// a variable in the VarTree.
type Word struct {
	Text  string // Source text of the token
	Var   string // VarTree key; empty for literals
	Value any    // Literal value when Var is empty
}

// IsVar reports whether the word is a variable placeholder.
func (w Word) IsVar() bool { return w.Var != "" }

// StepKind discriminates path steps.
type StepKind uint8

const (
	StepField StepKind = iota // .name
	StepIndex                 // [0] or ["key"]
	StepVar                   // [sub.var]
)

// Step is one access operation of a variable.
type Step struct {
	Kind StepKind
	Key  any    // string or int for StepField and StepIndex
	Var  string // SubVars key for StepVar
}

// Var describes a variable reference.
type Var struct {
	// Name is the source text of the variable, e.g. "a.b[c.d]".
	Name string

	// Steps are the access operations, root first.
	Steps []Step

	// SubVars holds variables used as computed keys, keyed by source text.
	SubVars map[string]*Var

	// WatchDepth is the number of leading steps used to probe whether a
	// scope defines the variable.
	WatchDepth int
}

// Root returns the name of the first step.
func (v *Var) Root() string {
	if len(v.Steps) == 0 {
		return ""
	}
	s, _ := v.Steps[0].Key.(string)
	return s
}

// IsThis reports whether the variable starts with the this keyword.
func (v *Var) IsThis() bool {
	return v.Root() == KeywordThis
}

// Segments returns the static dotted segments of the variable up to the
// first computed step.
func (v *Var) Segments() []string {
	segs := make([]string, 0, len(v.Steps))
	for _, s := range v.Steps {
		if s.Kind == StepVar {
			break
		}
		switch k := s.Key.(type) {
		case string:
			segs = append(segs, k)
		default:
			segs = append(segs, KeyString(k))
		}
	}
	return segs
}

// Arg is a filter argument: a literal or a nested expression.
type Arg struct {
	Literal any
	Exp     *Expression
}

// FilterCall is one stage of a filter pipeline.
type FilterCall struct {
	Name string
	Args []Arg
}

// Expression is a parsed binding expression.
type Expression struct {
	Source  string
	Words   []Word
	VarTree map[string]*Var
	Filters []FilterCall
}

// Vars returns the top-level variables in order of appearance.
func (e *Expression) Vars() []*Var {
	var out []*Var
	for _, w := range e.Words {
		if w.IsVar() {
			out = append(out, e.VarTree[w.Var])
		}
	}
	return out
}

// String returns the normalized source.
func (e *Expression) String() string {
	return strings.TrimSpace(e.Source)
}

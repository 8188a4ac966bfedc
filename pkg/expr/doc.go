// Package expr parses binding expressions and interprets access paths.
//
// An expression is the text between the delimiters of a template binding,
// such as the inside of {{ user.name | upper }}. Parse turns it into an
// Expression: ordered Words (literal values or variable placeholders), a
// VarTree describing every variable the words reference, and the filter
// pipeline applied to the result.
//
// # Grammar
//
//	expression := primary ( '|' filter ( ':' arg )* )*
//	primary    := path | string | number | true | false | null
//	arg        := primary
//	path       := ident ( '.' ident | '[' ( path | number | string ) ']' )*
//
// Bracketed paths are sub-variables. In a.b[c.d] the variable c.d is
// resolved on its own and its value becomes the key applied to a.b.
//
// # Paths
//
// Variables are not evaluated as source text. Once a variable has been bound
// to a scope, it is reduced to a Path of concrete keys and interpreted by
// Get, Has and Set against the scope's model. Maps, slices, arrays, structs
// and pointers to them are supported. Map keys starting with InternalPrefix
// and unexported struct fields are invisible to paths.
package expr

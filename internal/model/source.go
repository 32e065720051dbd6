// Package model defines the data structures shared by the clause statistics tool.
package model

// Path represents a file system path.
type Path string

// Subject is one project of the scanned corpus: a top-level subdirectory of the
// source root whose contracts are counted together.
type Subject struct {
	Name string `yaml:"name"`
	Root Path   `yaml:"root"`
}

// SyntaxRoot is the file-level view produced by a syntax adapter. Calls holds
// every invocation whose callee is a member access, in source order.
type SyntaxRoot struct {
	Path  Path
	Calls []*Invocation
}

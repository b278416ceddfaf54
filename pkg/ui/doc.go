// Package ui holds the console side of vinearchive: colored status lines,
// the two interactive prompts and the post submission progress line.
package ui

// Package source reads tag-list source files and expands their include
// directives into a single text.
//
// Includes are resolved depth-first and replaced in place. Each recursion
// branch carries its own copy of the set of files currently being resolved,
// so a fragment that includes one of its ancestors is detected and reported
// as a circular reference instead of recursing forever.
package source

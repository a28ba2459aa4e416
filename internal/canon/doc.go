// Package canon computes the spellings under which a declared type, enum or
// function can be referenced, and answers match queries against them.
//
// canon imports nothing internal. The entity package builds on it; sibling
// renderers use Index.HasMatch to check whether a parameter type names a
// previously declared custom type.
package canon

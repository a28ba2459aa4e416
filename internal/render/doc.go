// Package render turns a graph.Plan into text.
//
// SQL produces the installation script. Its output is diffed and checked in
// by downstream tooling, so it is a pure function of the plan: no
// timestamps, no map iteration, no host-dependent paths beyond what the
// descriptors carry.
package render

// Package model defines the workflow state record threaded through every
// step of a content-refinement run, together with the critique entries that
// drive the refine loop.
package model

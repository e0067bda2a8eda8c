// Package workflows contains small state graphs built on package graph: a
// two node demo and a priority triage workflow with conditional routing.
package workflows

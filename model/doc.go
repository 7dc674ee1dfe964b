// Package model defines the core types shared by every stage of sparseknn.
//
// # Types
//
//   - Feature: one (id, value) dimension of a sparse vector
//   - Example: a labeled sparse vector (identifier, category, sorted features)
//
// # Sort Invariant
//
// Example.Features is always sorted ascending by Feature.ID with no duplicate ids.
// The merge-based distance functions in package distance rely on it. Any code that
// mutates Features in place must keep the order (Retain does) or call Sort.
package model

// Package kvstore implements the repository interfaces over the kv namespace.
package kvstore

// Top-level collection keys in the shared namespace.
const (
	keyProjects = "projects"
	keyUsers    = "users"
)

// Package session houses concrete implementations of the core.SessionStore.
// The interface itself (and the Session struct) live in the core package to
// centralize domain contracts. Keeping only implementations here prevents
// tools from depending on concrete storage.
//
// The redis sub-package provides a durable backend; only the wiring layer
// decides which implementation to instantiate.
package session

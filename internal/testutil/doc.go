// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing sessions, stores and tool contexts. They are
// not intended for production usage.
package testutil

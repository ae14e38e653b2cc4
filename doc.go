// Package bindery is a dependency-injection container core for Go.
//
// The repository provides the two load-bearing subsystems of a container:
//
//   - a concurrent registry of named object definitions (aliases with cycle
//     detection, registration ordering, override policy, freeze snapshots,
//     type-indexed lookup with invalidation-on-mutation caching)
//   - a resolver that turns a typed request (scalar, slice, or string-keyed
//     map) into zero, one, or many objects using a deterministic
//     disambiguation protocol (primary flag, priority rank, name match).
//
// Object construction stays outside: callers plug in a Materializer and the
// resolver calls back into it lazily. The resolver never holds a lock across
// a Materialize call, so materializers may re-enter the resolver freely.
//
// See subpackages:
//   - container: the registry and resolver
//   - cmd/bindery-verify: manifest sanity checker for definition sets
//   - examples/greeter: end-to-end wiring demo
package bindery

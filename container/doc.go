// Package container implements the definition registry and dependency
// resolver at the core of bindery.
//
// The package splits the problem into two cooperating halves:
//
//   - Registry holds named Definitions, their aliases, manually supplied
//     singleton instances, and the memoized type index. Registration order
//     is preserved, overriding is policy-controlled, and Freeze locks the
//     definition set so type lookups become cacheable.
//
//   - Resolver answers typed dependency requests against a Registry:
//     shortcut values first, then type-index candidates filtered for
//     eligibility and self-references, then disambiguation by primary flag,
//     priority, and requested name. Slice- and map-shaped descriptors
//     collect every candidate instead of picking one.
//
// Instance construction is delegated through the Materializer interface, so
// the package stays agnostic about how objects actually get built. A
// Materializer may re-enter the registry; no locks are held across calls
// into it.
//
// All exported types are safe for concurrent use unless noted otherwise.
// Reads on hot paths (canonical name lookup, type-index hits, singleton
// access) are lock-free.
package container

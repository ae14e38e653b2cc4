// Command bindery-verify checks a wiring manifest against the registry rules
// without loading any application code.
//
// It reads a JSON manifest describing definitions and aliases, registers
// everything into an in-memory registry, and reports what the registry
// rejects plus the structural problems only visible across the whole
// manifest:
//
//   - duplicate definition names (unless -allow-overrides)
//   - alias cycles, alias collisions, and aliases shadowing definitions
//   - parent chains that reach unknown definitions or loop back on themselves
//   - types claimed by more than one primary definition
//
// Manifest format
//
// Minimal example:
//
//	{
//	  "definitions": [
//	    { "name": "db",      "type": "*sql.DB", "primary": true },
//	    { "name": "replica", "type": "*sql.DB" },
//	    { "name": "cache",   "type": "*redis.Client", "scope": "prototype",
//	      "qualifiers": ["sessions"] }
//	  ],
//	  "aliases": { "database": "db" }
//	}
//
// Each definition may additionally carry "parent", "factoryOwner", "lazy",
// "abstract", and "notAutowireCandidate". Scope defaults to "singleton".
//
// Usage
//
//	bindery-verify -manifest wiring.json
//
// Exit codes: 0 when the manifest is clean, 1 when findings were reported,
// 2 on usage or input errors. Findings go to stdout, one per line, in a
// deterministic order so runs can be diffed in CI.
package main

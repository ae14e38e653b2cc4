package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/binderlabs/bindery/container"
)

// manifestDefinition is one definition entry in the wiring manifest. Types
// are carried by name only; the verifier never loads application code.
type manifestDefinition struct {
	Name string `json:"name"`
	Type string `json:"type"`

	Parent       string   `json:"parent,omitempty"`
	Scope        string   `json:"scope,omitempty"` // "singleton" (default) or "prototype"
	FactoryOwner string   `json:"factoryOwner,omitempty"`
	Qualifiers   []string `json:"qualifiers,omitempty"`

	Primary  bool `json:"primary,omitempty"`
	Lazy     bool `json:"lazy,omitempty"`
	Abstract bool `json:"abstract,omitempty"`

	// NotAutowireCandidate opts the definition out of typed lookup. The
	// inverted name keeps the JSON zero value aligned with the registry
	// default (eligible).
	NotAutowireCandidate bool `json:"notAutowireCandidate,omitempty"`
}

// manifest is the full input schema: definitions plus an alias -> name map.
type manifest struct {
	Definitions []manifestDefinition `json:"definitions"`
	Aliases     map[string]string    `json:"aliases,omitempty"`
}

// run executes the verifier and returns an exit code. It exists separately
// from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("bindery-verify", flag.ContinueOnError)
	flags.SetOutput(stderr)

	manifestPath := flags.String("manifest", "", "path to the wiring manifest JSON")
	allowOverrides := flags.Bool("allow-overrides", false, "treat duplicate definition names as overrides instead of findings")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*manifestPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: bindery-verify -manifest <wiring.json> [-allow-overrides]")
		return 2
	}

	raw, err := os.ReadFile(*manifestPath)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "bindery-verify:", err)
		return 2
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		_, _ = fmt.Fprintln(stderr, "bindery-verify: invalid manifest:", err)
		return 2
	}

	findings := verify(&m, *allowOverrides)
	for _, f := range findings {
		_, _ = fmt.Fprintln(stdout, f)
	}
	if len(findings) > 0 {
		_, _ = fmt.Fprintf(stdout, "%d finding(s)\n", len(findings))
		return 1
	}
	_, _ = fmt.Fprintln(stdout, "ok:", len(m.Definitions), "definitions,", len(m.Aliases), "aliases")
	return 0
}

// verify loads the manifest into a registry and reports everything the
// registry itself rejects, plus the structural checks a registry cannot do
// at registration time (dangling or cyclic parent chains, duplicate primary
// declarations per type).
func verify(m *manifest, allowOverrides bool) []string {
	var findings []string
	r := container.NewRegistry(container.WithOverriding(allowOverrides))

	for _, md := range m.Definitions {
		def, err := toDefinition(md)
		if err != nil {
			findings = append(findings, "definition "+md.Name+": "+err.Error())
			continue
		}
		if err := r.Register(md.Name, def); err != nil {
			findings = append(findings, err.Error())
		}
	}

	// Deterministic alias order so repeated runs report identically.
	aliases := make([]string, 0, len(m.Aliases))
	for alias := range m.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if err := r.RegisterAlias(m.Aliases[alias], alias); err != nil {
			findings = append(findings, err.Error())
		}
	}

	findings = append(findings, checkParentChains(r)...)
	findings = append(findings, checkPrimaries(r)...)
	return findings
}

func toDefinition(md manifestDefinition) (*container.Definition, error) {
	def := &container.Definition{
		TypeName:          md.Type,
		Parent:            md.Parent,
		FactoryOwner:      md.FactoryOwner,
		Qualifiers:        md.Qualifiers,
		Primary:           md.Primary,
		Lazy:              md.Lazy,
		Abstract:          md.Abstract,
		AutowireCandidate: !md.NotAutowireCandidate,
	}
	switch md.Scope {
	case "", "singleton":
		def.Scope = container.ScopeSingleton
	case "prototype":
		def.Scope = container.ScopePrototype
	default:
		return nil, fmt.Errorf("unknown scope %q", md.Scope)
	}
	return def, nil
}

// checkParentChains walks every definition's parent chain through alias
// canonicalization, reporting dangling parents and parent cycles.
func checkParentChains(r *container.Registry) []string {
	var findings []string
	for _, name := range r.DefinitionNames() {
		seen := map[string]bool{name: true}
		current := name
		for {
			def, err := r.Definition(current)
			if err != nil || def.Parent == "" {
				break
			}
			parent := r.CanonicalName(def.Parent)
			if !r.ContainsDefinition(parent) {
				findings = append(findings,
					"definition "+name+": parent chain reaches unknown definition "+strconv.Quote(parent))
				break
			}
			if seen[parent] {
				findings = append(findings,
					"definition "+name+": parent chain contains a cycle through "+strconv.Quote(parent))
				break
			}
			seen[parent] = true
			current = parent
		}
	}
	return findings
}

// checkPrimaries groups primary definitions by their effective type name and
// reports types claimed by more than one primary.
func checkPrimaries(r *container.Registry) []string {
	primariesByType := map[string][]string{}
	for _, name := range r.DefinitionNames() {
		def, err := r.Definition(name)
		if err != nil || !def.Primary || def.Abstract {
			continue
		}
		typeName := effectiveTypeName(r, name)
		if typeName == "" {
			continue
		}
		primariesByType[typeName] = append(primariesByType[typeName], name)
	}

	types := make([]string, 0, len(primariesByType))
	for t := range primariesByType {
		types = append(types, t)
	}
	sort.Strings(types)

	var findings []string
	for _, t := range types {
		if names := primariesByType[t]; len(names) > 1 {
			findings = append(findings,
				"type "+t+": multiple primary definitions ["+strings.Join(names, ", ")+"]")
		}
	}
	return findings
}

// effectiveTypeName resolves the declared type, walking up the parent chain
// when the definition itself declares none. Chains already reported as
// broken simply yield an empty name here.
func effectiveTypeName(r *container.Registry, name string) string {
	seen := map[string]bool{}
	current := name
	for !seen[current] {
		seen[current] = true
		def, err := r.Definition(current)
		if err != nil {
			return ""
		}
		if def.TypeName != "" {
			return def.TypeName
		}
		if def.Parent == "" {
			return ""
		}
		current = r.CanonicalName(def.Parent)
	}
	return ""
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

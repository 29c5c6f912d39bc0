// Package harness runs conformance scenarios against the tokenization engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cascade
//	description: "What this scenario validates"
//	document:            # the object graph to tokenize
//	  host: api.example.com
//	  url: https://@host@/v1
//	lookup: { ... }      # optional separate lookup root
//	strict: false        # fail on unresolved tokens
//	max_passes: 0        # 0 keeps the engine default
//	expect:
//	  document:          # subset match on the tokenized document
//	    url: https://api.example.com/v1
//	  error: ""          # expected error code, e.g. SELF_REFERENCING_TOKEN
//	assertions:
//	  - type: field_equals
//	    path: url
//	    value: https://api.example.com/v1
//	  - type: trace_contains
//	    token: "@host@"
//	    outcome: substituted
//	  - type: trace_count
//	    outcome: blanked
//	    count: 0
//	  - type: passes
//	    count: 1
//
// # Deterministic Testing
//
// Every scenario runs on a private copy of its document with a fresh
// engine whose event numbering starts at 1, so traces are identical across runs and can be compared
// against golden files.
package harness

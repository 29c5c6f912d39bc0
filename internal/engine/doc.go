// Package engine implements the objtok substitution engine.
//
// The engine resolves @path@ tokens found in the string fields of an object
// graph against a lookup object, writing the resolved text back in place.
//
// ARCHITECTURE:
//
// Fixpoint passes:
// A run walks the whole input graph once per pass. Every string handed to
// the engine by the walker is scanned for tokens; each token path is
// resolved against the lookup root and the token text is replaced. When a
// pass leaves token syntax behind (a replacement was itself a token, or a
// field depended on another field not yet resolved), the graph is walked
// again. This realizes cascading resolution without building a dependency
// graph.
//
// Termination:
//   - Done: a pass ends with no residual token in any visited string
//   - Unresolved: a path does not resolve and ThrowOnUnresolved is set
//   - Self reference: a pass leaves residual tokens but changes nothing,
//     so every later pass would be identical, or the residual token paths
//     reach a reference cycle in the lookup root
//   - Pass limit: the run exceeds MaxPasses (reference chains deeper than
//     the budget)
//
// Failed runs do not roll back writes already applied.
//
// CONCURRENCY:
//
// A run is synchronous and single-threaded. The engine exclusively owns
// write access to the fields it touches for the duration of a run; callers
// must not share mutable sub-objects across concurrent runs. An Engine may
// be reused for sequential runs but not shared between goroutines.
package engine

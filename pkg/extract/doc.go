// Package extract implements the dependency closure engine.
//
// Given one or more entry files and a set of project roots, the engine
// computes the minimal set of local source files and external packages
// reachable from the entries, so that a coherent subset of a larger
// codebase can be carved out without manually tracing references.
//
// # Architecture
//
// The engine is split into small, explicitly-wired pieces:
//
//   - Job describes a fully-specified extraction (entries, roots,
//     ignore patterns, recursion policy, outputs) and validates itself
//     before any work starts.
//   - Language binds a file extension set to an Extractor constructor
//     and the manifest readers for that ecosystem. Adding a language
//     means adding one Language value, not touching the traversal.
//   - Extractor is the per-file analysis strategy. Two structurally
//     different strategies ship in subpackages: python (explicit
//     import statements resolved against the roots) and csharp
//     (implicit type usage resolved through a concurrently-built
//     symbol index).
//   - Resolver drives a breadth-first traversal over the file graph,
//     visiting each file at most once regardless of in-degree, and
//     accumulates the Result.
//   - ManifestReader parses project-description files (requirements,
//     pyproject, csproj) for the authoritative external package list.
//
// # Concurrency
//
// Only the csharp symbol-index build is parallel: independent worker
// scans produce partial maps that are folded by a single merge step
// before traversal begins. The traversal itself is single-threaded, so
// the visited set and result accumulators need no locking.
//
// # Error policy
//
// Per-file failures (unreadable files, syntax errors, unresolved or
// ambiguous references) never abort a run; they are recorded as
// warnings on the Result. Configuration problems fail fast before
// traversal via Job.Validate.
package extract

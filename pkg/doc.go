// Package pkg contains the carve library packages.
//
// carve extracts the dependency closure of one or more entry files from a
// source tree: every local file the entries transitively reference, plus the
// third-party packages those files actually use, with versions resolved from
// the project's manifests. A package a manifest declares but no included file
// references stays out of the closure.
//
// # Package Layout
//
//	pkg/errors      Coded errors with user-facing messages
//	pkg/ignore      Directory and file-glob exclusion filter
//	pkg/extract     Job model, resolver, traversal, and results
//	pkg/extract/python  Import-based extraction for Python sources
//	pkg/extract/csharp  Index-based extraction for C# sources
//	pkg/output      Materializing results to a directory or zip archive
//	pkg/graph       Dependency graph serialization and rendering
//
// # Data Flow
//
// A Job names entry files, source roots, and options. The resolver validates
// the job, scans manifests under the roots, then walks outward from the
// entries: each visited file is handed to the extractor for its language,
// which reports local file references and external package usages. Local
// references join the traversal queue; external usages are matched against
// the declared manifest packages. The resulting file set, package set, edge
// list, and warnings land in a Result, which pkg/output materializes and
// pkg/graph serializes.
//
// Language support is pluggable: a Language pairs file extensions with an
// extractor constructor and manifest readers, and the CLI registers the
// languages it ships with.
package pkg

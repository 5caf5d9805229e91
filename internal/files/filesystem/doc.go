// Package filesystem abstracts reading input files so loaders can be
// tested without touching disk.
//
// Implementations:
//   - OSFileSystem: production implementation using the OS filesystem
//   - MemoryFileSystem: in-memory implementation for tests
package filesystem

// Package seen provides a bounded TTL cache of bridge ids verified to
// exist in storage, used to avoid redundant existence checks before
// non-critical log writes. The cache is an optimization, never a
// correctness dependency.
package seen

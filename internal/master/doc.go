// Package master owns the persisted dataset: the advisory lock that
// serializes writers, the atomic write-temp-then-rename replacement of the
// data file, and the metadata sidecar describing the last merge.
package master

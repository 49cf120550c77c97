// Package stability decides when files dropped into the watch directory have
// finished being written.
//
// A file qualifies by producing the same content digest on two passes
// separated by a configurable wait. The wait is shared across the whole
// candidate set, so a scan cycle pays it once regardless of how many files
// arrived. Files that cannot be hashed, exceed the size ceiling, or change
// between passes are reported as skips with a classified checksum error and
// picked up again on the next cycle.
package stability

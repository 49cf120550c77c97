// Package intake turns stable files into validated batches. A batch only
// exists once the file decoded cleanly under the configured charset and
// passed the structural checks: at least one data row, the key column and
// every required column present, and no null key cells.
package intake

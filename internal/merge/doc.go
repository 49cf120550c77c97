// Package merge computes the next master dataset from the current one and a
// validated batch. Keys are upserted whole row at a time, the column set
// becomes the sorted union of both sides, and columns the batch no longer
// carries can be pruned dataset-wide.
package merge

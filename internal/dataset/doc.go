// Package dataset holds the in-memory table model shared by the ingest
// pipeline: an ordered column list plus rows of string cells.
//
// A cell is null when its key is absent from the row map or holds the empty
// string; both forms serialize to an empty CSV cell, which keeps round trips
// through the master file lossless. The package also owns the CSV codec,
// including strict character-set handling: content that does not decode under
// the configured encoding is rejected rather than silently substituted.
//
// Datasets are plain values. Reindex shares row storage between the input and
// output, so treat rows as immutable once a dataset has been handed to the
// merge.
package dataset

// Package preflight provides readiness checks for the directories, files,
// and settings an ingest run depends on.
//
// These checks run in two contexts:
//   - The run and watch commands call RunAll before the first cycle so a
//     misconfigured deployment aborts up front instead of failing midway
//     through a merge.
//   - The CLI "hopper status" command displays the results alongside the
//     master file summary.
//
// The journal check is gated by its config toggle; everything else is
// always evaluated.
package preflight

// Package output formats commit-message reports for display or machine
// consumption.
//
// Two formats are supported:
//   - text  human-readable summary (default)
//   - json  full structured report, including the message
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*Report].
package output

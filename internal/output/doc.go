// Package output formats audit results for display or machine consumption.
//
// Three formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured JSON result
//   - markdown — report-friendly with collapsible finding sections
//
// The per-finding section headings ("Evidence:", "Why this matters:",
// "Suggested fix:") are a frozen consumer contract shared by the text and
// markdown writers.
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and an [*audit.Result]. [WriteResult]
// is a convenience helper that handles destination selection.
package output

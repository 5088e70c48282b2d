// Package core provides the chart studio's domain logic.
//
// The package turns tabular text into chart input and keeps per-user state.
// It has no knowledge of HTTP or the terminal, so the web server, the CLI and
// tests drive it the same way.
//
// # Data Flow
//
//  1. A loader ([Load], [LoadReader], [LoadWorkbook]) reads a source into a [Table].
//     CSV delimiters are guessed by [SniffDelimiter].
//  2. [Project] maps three columns of the table to a chart.Series.
//  3. A chart.Template resolved from the registry draws the series on a chart.Scene.
//
// # Sessions
//
// A [Session] holds one user's table, group colors and last chart. Every
// operation either succeeds completely or leaves the session as it was. The
// [Service] stores sessions by uuid, expires idle ones with a janitor
// goroutine and bounds concurrent work with a per-stage [Workload].
//
// # Error Handling
//
// Loaders return *[LoadError] and the projector returns *[ProjectionError].
// [MapError] turns these and the chart package's errors into a [UserMessage]
// with a support code:
//
//   - FILE001-FILE006: Source errors (size, format, encoding, empty)
//   - COL001-COL003: Column selection errors
//   - TPL001-TPL003: Template errors
//   - RND001-RND005: Render errors
//   - DB001-DB008: Database query errors
package core

// Package ui renders the lanscan terminal output.
//
// Components follow a "print and move on" pattern built on Lipgloss, with one
// exception: the live countdown shown while a scan is running is a Bubble Tea
// program fed by the scanner's progress reports.
//
//   - Header: banner with the scan parameters
//   - Confirm: the welcome text and a [Y/n] question
//   - ScanView: spinner, countdown bar and peers-so-far while listening
//   - LineReporter: a plain single-line countdown for pipes and dumb terminals
//   - RenderPeers / RenderEmpty / RenderFailure: the final outcome
//
// ScanRunner ties them together:
//
//	runner := ui.NewScanRunner(ui.ScanRunnerConfig{
//	    Command: "lanscan scan",
//	    Params:  []ui.Param{{Key: "Port", Value: "17500"}},
//	})
//	result, err := runner.Run(ctx, scanner)
//
// Logging is controlled via LANSCAN_LOG_LEVEL and written to stderr, so it
// never interleaves with the styled stdout output.
package ui

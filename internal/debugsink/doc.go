// Package debugsink persists card crops for offline calibration.
//
// Three recognition.DebugSink implementations are provided:
//
//   - Dir writes each crop, suit region and suit mask as PNG files
//   - Archive stores crops and their classification scores in SQLite
//   - Async wraps another sink with a bounded queue and a single writer
//     goroutine, dropping crops when the queue is full
//
// Multi fans one crop out to several sinks. Sinks never see a crop before
// recognition of that slot has finished, and never modify it.
package debugsink

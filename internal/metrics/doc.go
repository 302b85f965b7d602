// Package metrics records build observations.
//
// Components receive a Recorder and default to NoopRecorder, so metrics never
// need nil checks at call sites. The CLI swaps in a PrometheusRecorder when a
// metrics file is requested and writes the registry out with WriteTextfile
// once the build finishes.
package metrics

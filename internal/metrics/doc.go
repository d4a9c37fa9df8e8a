// Package metrics records build and stage metrics for swaybuild runs.
//
// Components receive a Recorder and default to NoopRecorder, so metrics are
// optional everywhere. PrometheusRecorder registers its collectors on a
// caller-supplied registry; because swaybuild is a one-shot command, the
// registry is exported with WriteTextfile for the node_exporter textfile
// collector rather than served over HTTP.
package metrics

// Package metrics provides the observability hooks for staticgen generation passes.
//
// The package implements the Null Object pattern: components hold a Recorder
// and default to NoopRecorder, so metrics collection needs no nil checks.
//
//	type Generator struct {
//	    recorder metrics.Recorder
//	}
//
// To enable metrics, inject a PrometheusRecorder:
//
//	reg := prometheus.NewRegistry()
//	gen := generator.New(generator.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics

// Package observability provides structured logging and metrics for the
// GreenGalaxy VR gateway.
//
// Loggers are zap loggers built from configuration and injected into every
// component. Metrics are Prometheus collectors registered on a dedicated
// registry so tests can build isolated instances.
package observability

// Package subscriber provides ready-made bus subscribers: a console printer,
// an in-memory recorder, a per-topic counter, a bridge into a leveled
// logger, and helpers for sharing one filter between several consumers.
package subscriber

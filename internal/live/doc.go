// Package live provides sinks that receive tile results while a run is in
// progress: a non-blocking queue, a collector, a progressive reveal canvas,
// and a publisher that streams tiles to Redis.
//
// Every type here implements engine.Sink and may be notified concurrently
// from tile tasks.
package live

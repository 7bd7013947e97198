// Package messaging provides a broker-agnostic API for publishing messages.
//
// Business code depends on Publisher only; the broker (NATS, Kafka, NSQ or
// none) is chosen at startup through NewFromDriver.
package messaging

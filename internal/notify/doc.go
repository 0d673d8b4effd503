// Package notify is the fire-and-forget notification sink.
//
// Messages queue in memory with a fixed time-to-live and are pruned on
// read; pushing never blocks and never fails, so workflow code can surface
// problems without coupling its control flow to notification delivery.
// When an ntfy topic is configured, messages are also mirrored to it on a
// best-effort basis.
package notify

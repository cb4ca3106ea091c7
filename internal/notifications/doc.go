// Package notifications sends desktop notifications for finished,
// failed, and cancelled conversions via notify-send, degrading to a
// noop service when notifications are disabled or the binary is
// missing.
package notifications

// Package alert delivers pass alerts. A webhook notifier posts {"text": message} to
// a chat-style incoming webhook; without a URL alerts only reach the log.
package alert

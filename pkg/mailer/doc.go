// Package mailer defines the outbound email transport boundary: a Message
// value, a Sender interface, the Postmark-backed production sender and a
// filesystem DevSender for local runs.
package mailer

// Package queue defines the messages exchanged over the broker and the
// consumer that turns them into outbound mail.
package queue

// OTPEmailEvent is published whenever a one-time passcode is issued. The
// consumer formats and delivers the mail; the publishing request never
// waits on SMTP.
type OTPEmailEvent struct {
	Recipient string `json:"recipient"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
	IssuedAt  string `json:"issued_at"`
}

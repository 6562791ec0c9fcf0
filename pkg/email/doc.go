// Package email defines the EmailSender interface and two implementations:
// a Postmark transactional client for production and a filesystem DevSender
// for local development.
//
// Login codes, verification links, password reset links, and contact form
// submissions all go through this interface; sending is synchronous and a
// failure surfaces to the caller.
package email

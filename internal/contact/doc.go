// Package contact implements the contact form endpoint: field validation
// (name length, email format, digits-only phone) and synchronous delivery to
// the site owner's inbox.
package contact

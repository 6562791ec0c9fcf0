// Package file provides blob storage for published static assets with
// interchangeable backends: Amazon S3 (or any S3-compatible service) for
// production and the local filesystem for development.
//
// All backends implement the Storage interface. Object paths are
// normalized and validated against traversal before any operation runs.
package file

// Package requestid attaches a correlation identifier to every HTTP
// request. A valid client-supplied X-Request-ID header is reused,
// anything else is replaced with a fresh UUID; the chosen ID is stored
// in the request context and echoed back in the response header.
package requestid

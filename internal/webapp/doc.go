// Package webapp owns the HTML surface: the template renderer, the portfolio
// top page, and the embedded static assets.
package webapp

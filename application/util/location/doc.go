// Package location parses the target of a request: scheme, host, optional port,
// path and query. It follows the generic URI syntax closely enough for an HTTP
// client and nothing more.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc3986
//
// - https://datatracker.ietf.org/doc/html/rfc5891
package location

// Package http speaks just enough Hypertext Transfer Protocol (HTTP/1.1) to send
// a JSON request and read a JSON response over a raw stream.
//
// Requests are built by [Request] and serialized by [RequestEncoder]. Responses are
// parsed from the complete byte buffer by [ParseResponse]. Every failure is an
// [*Error] carrying the [Kind] of the stage that failed.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http

// Package api exposes chat sessions over HTTP. It is a driving adapter
// that translates JSON requests into calls on the session service and
// maps domain errors to HTTP status codes.
package api

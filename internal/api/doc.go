// Package api contains the HTTP handlers, request/response models, and the
// error-to-status mapping for the public REST surface. Handlers decode and
// validate input, call the service or store layer, and translate errors
// through MapErrorToStatusCode and GetSafeErrorMessage so internal details
// never reach a client.
package api

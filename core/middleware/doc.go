// Package middleware groups the Fiber middleware used by the trigger server.
//
// Subpackages:
//   - rayid: assigns a correlation id (ray_id) to every request.
//   - auth: guards the API behind a shared key.
package middleware

package core

import "errors"

// ErrNotFound marks a scoped read that matched nothing. A record that does
// not exist and a record owned by another tenant produce the same error, so
// resource ids cannot be probed across tenants. Match with errors.Is.
var ErrNotFound = errors.New("not found")

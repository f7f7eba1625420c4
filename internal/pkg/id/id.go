package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. Ids from the same process are strictly
// increasing, even within one millisecond, so they sort by creation order.
func New() string {
	return ulid.Make().String()
}

package ids

import "github.com/segmentio/ksuid"

// New returns a new k-sortable entity id.
func New() string {
	return ksuid.New().String()
}

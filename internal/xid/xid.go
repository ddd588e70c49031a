package xid

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// New returns a sortable unique id, optionally prefixed ("cus-01H...").
func New(prefix string) string {
	id := strings.ToLower(ulid.Make().String())
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

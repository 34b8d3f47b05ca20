package service

import (
	"errors"

	"github.com/helixml/citetrack/internal/database"
	"github.com/helixml/citetrack/internal/domain"
)

// storeError maps a store failure to a domain category. A missing record
// becomes ErrNotFound with the given noun; anything else is upstream.
func storeError(noun string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound("%s not found", noun)
	}
	return domain.Upstream("load "+noun, err)
}

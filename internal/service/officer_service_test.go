package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// The self-deletion guard must reject before any storage access, so an
// officer-admin can never remove its own record no matter the repo state.
func TestDeleteOfficer_SelfDeletionRejected(t *testing.T) {
	t.Parallel()

	svc := NewOfficerService(nil, nil, nil, zerolog.Nop())

	err := svc.Delete(context.Background(), "off-1", "off-1")
	assert.ErrorIs(t, err, ErrSelfDeletion)
}

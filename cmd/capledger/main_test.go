package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"blank name", types.ErrBlankName, exitUserError},
		{"entity type", types.ErrInvalidEntityType, exitUserError},
		{"class kind", types.ErrInvalidClassKind, exitUserError},
		{"shares", types.ErrNonPositiveShares, exitUserError},
		{"validation result", &types.ValidationError{}, exitUserError},
		{"cycle", &types.CircularOwnershipError{OwnerEntityID: "a", OwnedEntityID: "b"}, exitUserError},
		{"referential", &types.ReferentialIntegrityError{Kind: types.TargetEntity, ID: "e-1"}, exitUserError},
		{"conflict", &types.ConflictError{Kind: types.TargetEntity, ID: "e-1", ExpectedVersion: 1, ActualVersion: 2}, exitUserError},
		{"not found", &types.NotFoundError{Kind: types.TargetEntity, ID: "e-1"}, exitUserError},
		{"invalid id", types.ErrInvalidID, exitUserError},
		{"invalid data", types.ErrInvalidData, exitUserError},
		{"wrapped user error", fmt.Errorf("adding ownership: %w", types.ErrBlankName), exitUserError},
		{"closed ledger", types.ErrLedgerClosed, exitSysError},
		{"plain error", errors.New("disk gone"), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

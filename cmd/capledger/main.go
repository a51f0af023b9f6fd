// Command capledger is the CLI host for the ownership ledger: entity,
// share class and ownership management, derived cap table and hierarchy
// views, and the audit trail.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error classes to exit codes: user errors (validation,
// conflicts, missing records) exit 1, system errors exit 2.
func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrCircularOwnership),
		errors.Is(err, types.ErrReferentialIntegrity),
		errors.Is(err, types.ErrConflict),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData):
		return exitUserError
	default:
		return exitSysError
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/keyring"
	"github.com/julianstephens/nudge/internal/logger"
	"github.com/julianstephens/nudge/internal/migration"
	"github.com/julianstephens/nudge/internal/permission"
	"github.com/julianstephens/nudge/internal/storage"
)

// hints maps known failures to a next step for the user.
var hints = []struct {
	target error
	hint   string
}{
	{permission.ErrPermission, "run 'nudge permission request' to allow notifications"},
	{storage.ErrNotFound, "run 'nudge list' to see reminder IDs"},
	{migration.ErrSchemaTooNew, "upgrade nudge to a version that knows this database"},
	{keyring.ErrNotFound, "run 'nudge keyring set' or set " + constants.DBConnectionEnvVar},
}

// Hint returns a suggested next step for err, or "" when none applies.
func Hint(err error) string {
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrProfileNotFound = errors.New("profile not found")

// RemoteWriteError is a failed detached write. Local state is kept as-is; the
// error only reaches the user through the notice queue.
type RemoteWriteError struct {
	Op  string
	Key string
	Err error
}

func (e RemoteWriteError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e RemoteWriteError) Unwrap() error { return e.Err }

// RemoteReadError means the remote state could not be loaded; callers show it
// in place of content.
type RemoteReadError struct {
	Err error
}

func (e RemoteReadError) Error() string {
	return fmt.Sprintf("load remote state: %v", e.Err)
}

func (e RemoteReadError) Unwrap() error { return e.Err }

// MigrationError lists the local records that could not be copied to the
// remote store on first login.
type MigrationError struct {
	Failed []string
	Err    error
}

func (e MigrationError) Error() string {
	if len(e.Failed) <= 3 {
		return fmt.Sprintf("migrate %d record(s) [%s]: %v", len(e.Failed), strings.Join(e.Failed, ", "), e.Err)
	}
	return fmt.Sprintf("migrate %d record(s) [%s, ...]: %v", len(e.Failed), strings.Join(e.Failed[:3], ", "), e.Err)
}

func (e MigrationError) Unwrap() error { return e.Err }

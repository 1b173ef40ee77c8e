package contracts

import (
	"errors"
	"fmt"
)

// RetryErr marks transport failures that are worth another attempt.
// Adapters wrap retryable errors with this sentinel; permanent failures
// (bad request, not found) are returned bare.
var RetryErr = errors.New("retry")

var (
	ErrInstallInProgress  = errors.New("an install is already in progress")
	ErrNotCancellable     = errors.New("task is not in a cancellable state")
	ErrNotRetryable       = errors.New("task is not in a failed state")
	ErrSessionUnsupported = errors.New("platform does not support install sessions")
)

type FailureReason string

const (
	ReasonDownload   FailureReason = "download"
	ReasonPermission FailureReason = "permission"
	ReasonPlatform   FailureReason = "platform"
	ReasonCancelled  FailureReason = "cancelled"
)

// InstallError is the sole error shape the coordinator surfaces to callers;
// raw transport and platform errors never escape untranslated.
type InstallError struct {
	Reason FailureReason
	Err    error
}

func NewInstallError(reason FailureReason, err error) *InstallError {
	return &InstallError{Reason: reason, Err: err}
}

func (this *InstallError) Error() string {
	if this.Err == nil {
		return fmt.Sprintf("install failed (reason=%s)", this.Reason)
	}
	return fmt.Sprintf("install failed (reason=%s): %s", this.Reason, this.Err)
}

func (this *InstallError) Unwrap() error { return this.Err }

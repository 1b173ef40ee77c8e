package contracts

import "io"

type InstallStrategy string

const (
	// StrategyDirect hands the file to the platform's viewer-style installer.
	// Fire-and-forget: the platform never reports an outcome on this path.
	StrategyDirect InstallStrategy = "direct"

	// StrategySession stages bytes into a platform install transaction and
	// commits it; the platform delivers exactly one InstallOutcome per commit.
	StrategySession InstallStrategy = "session"
)

type SessionHandle string

type OutcomeStatus string

const (
	OutcomeSuccess           OutcomeStatus = "success"
	OutcomeFailure           OutcomeStatus = "failure"
	OutcomePendingUserAction OutcomeStatus = "pending-user-action"
)

// InstallOutcome is the platform installer's asynchronous verdict on a
// committed session. Reason carries the platform-supplied failure text
// verbatim. ConfirmationHandle identifies the platform confirmation surface
// the user must be routed to when Status is OutcomePendingUserAction.
type InstallOutcome struct {
	Status             OutcomeStatus
	Reason             string
	ConfirmationHandle string
}

// PlatformInstaller is the boundary to the host platform's package-install
// facility. Permission preconditions are checked by the caller, not here.
type PlatformInstaller interface {
	InstallDirect(localPath string) error
	CreateSession() (SessionHandle, error)
	WriteToSession(handle SessionHandle, name string, size int64, source io.Reader) error
	CommitSession(handle SessionHandle, callback func(InstallOutcome)) error
	HasInstallPermission() bool
	RequestInstallPermission() error
}

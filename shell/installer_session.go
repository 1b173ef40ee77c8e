package shell

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sideloadhq/depot/contracts"
)

var sessionIDPattern = regexp.MustCompile(`\[(\d+)\]`)

// SessionInstaller drives the platform's staged install transaction
// (pm install-create / install-write / install-commit). Unlike the direct
// path, commits report an observable outcome.
type SessionInstaller struct {
	runner CommandRunner
	packagePermissions
}

func NewSessionInstaller(runner CommandRunner) *SessionInstaller {
	return &SessionInstaller{runner: runner, packagePermissions: packagePermissions{runner: runner}}
}

func (this *SessionInstaller) InstallDirect(localPath string) error {
	return NewDirectInstaller(this.runner).InstallDirect(localPath)
}

func (this *SessionInstaller) CreateSession() (contracts.SessionHandle, error) {
	output, err := this.runner.Run("shell", "pm", "install-create", "-r")
	if err != nil {
		return "", err
	}
	match := sessionIDPattern.FindStringSubmatch(output)
	if match == nil {
		return "", fmt.Errorf("could not parse session id from %q", strings.TrimSpace(output))
	}
	return contracts.SessionHandle(match[1]), nil
}

func (this *SessionInstaller) WriteToSession(handle contracts.SessionHandle, name string, size int64, source io.Reader) error {
	_, err := this.runner.RunWithInput(source, "shell", "pm", "install-write",
		"-S", strconv.FormatInt(size, 10), string(handle), name, "-")
	return err
}

// CommitSession commits asynchronously and delivers exactly one outcome to
// the callback, however the platform responds.
func (this *SessionInstaller) CommitSession(handle contracts.SessionHandle, callback func(contracts.InstallOutcome)) error {
	var once sync.Once
	deliver := func(outcome contracts.InstallOutcome) {
		once.Do(func() { callback(outcome) })
	}
	go func() {
		output, err := this.runner.Run("shell", "pm", "install-commit", string(handle))
		deliver(interpretCommitOutput(handle, output, err))
	}()
	return nil
}

func interpretCommitOutput(handle contracts.SessionHandle, output string, err error) contracts.InstallOutcome {
	trimmed := strings.TrimSpace(output)
	switch {
	case strings.Contains(trimmed, "Success"):
		return contracts.InstallOutcome{Status: contracts.OutcomeSuccess}
	case err != nil && trimmed == "":
		return contracts.InstallOutcome{Status: contracts.OutcomeFailure, Reason: err.Error()}
	case err != nil, strings.Contains(trimmed, "Failure"), strings.Contains(trimmed, "INSTALL_FAILED"):
		return contracts.InstallOutcome{Status: contracts.OutcomeFailure, Reason: trimmed}
	default:
		// The platform is holding the session for user confirmation.
		return contracts.InstallOutcome{
			Status:             contracts.OutcomePendingUserAction,
			ConfirmationHandle: string(handle),
		}
	}
}

////////////////////////////////////////

type packagePermissions struct {
	runner CommandRunner
}

func (this packagePermissions) HasInstallPermission() bool {
	output, err := this.runner.Run("shell", "settings", "get", "secure", "install_non_market_apps")
	if err != nil {
		return false
	}
	return strings.TrimSpace(output) == "1"
}

// RequestInstallPermission opens the platform settings surface; the result is
// not synchronously observable, so callers re-check HasInstallPermission
// after the user returns.
func (this packagePermissions) RequestInstallPermission() error {
	_, err := this.runner.Run("shell", "am", "start",
		"-a", "android.settings.MANAGE_UNKNOWN_APP_SOURCES")
	return err
}

// ProbeInstaller selects the richest install strategy the device supports:
// staged sessions arrived with SDK 21, older devices get the direct path.
func ProbeInstaller(runner CommandRunner) (contracts.PlatformInstaller, contracts.InstallStrategy) {
	output, err := runner.Run("shell", "getprop", "ro.build.version.sdk")
	if err == nil {
		if sdk, parseErr := strconv.Atoi(strings.TrimSpace(output)); parseErr == nil && sdk >= 21 {
			return NewSessionInstaller(runner), contracts.StrategySession
		}
	}
	return NewDirectInstaller(runner), contracts.StrategyDirect
}

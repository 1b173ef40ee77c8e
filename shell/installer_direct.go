package shell

import (
	"io"
	"path/filepath"

	"github.com/sideloadhq/depot/contracts"
)

const deviceStagingDir = "/data/local/tmp"

// DirectInstaller pushes the package to the device and opens it with the
// platform's package-installer activity. Fire-and-forget: the activity never
// reports back, which is why the coordinator parks such tasks at
// install-requested instead of claiming success.
type DirectInstaller struct {
	runner CommandRunner
	packagePermissions
}

func NewDirectInstaller(runner CommandRunner) *DirectInstaller {
	return &DirectInstaller{runner: runner, packagePermissions: packagePermissions{runner: runner}}
}

func (this *DirectInstaller) InstallDirect(localPath string) error {
	devicePath := deviceStagingDir + "/" + filepath.Base(localPath)
	if _, err := this.runner.Run("push", localPath, devicePath); err != nil {
		return err
	}
	_, err := this.runner.Run("shell", "am", "start",
		"-a", "android.intent.action.VIEW",
		"-d", "file://"+devicePath,
		"-t", "application/vnd.android.package-archive")
	return err
}

func (this *DirectInstaller) CreateSession() (contracts.SessionHandle, error) {
	return "", contracts.ErrSessionUnsupported
}

func (this *DirectInstaller) WriteToSession(contracts.SessionHandle, string, int64, io.Reader) error {
	return contracts.ErrSessionUnsupported
}

func (this *DirectInstaller) CommitSession(contracts.SessionHandle, func(contracts.InstallOutcome)) error {
	return contracts.ErrSessionUnsupported
}

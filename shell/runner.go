package shell

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CommandRunner abstracts the device bridge so installers can be tested
// without a connected device.
type CommandRunner interface {
	Run(args ...string) (output string, err error)
	RunWithInput(input io.Reader, args ...string) (output string, err error)
}

// ADB shells out to the Android debug bridge. An empty serial targets the
// only connected device.
type ADB struct {
	executable string
	serial     string
}

func NewADB(executable, serial string) *ADB {
	if executable == "" {
		executable = "adb"
	}
	return &ADB{executable: executable, serial: serial}
}

func (this *ADB) Run(args ...string) (string, error) {
	return this.RunWithInput(nil, args...)
}

func (this *ADB) RunWithInput(input io.Reader, args ...string) (string, error) {
	if this.serial != "" {
		args = append([]string{"-s", this.serial}, args...)
	}
	command := exec.Command(this.executable, args...)
	command.Stdin = input
	raw, err := command.CombinedOutput()
	output := string(raw)
	if err != nil {
		return output, fmt.Errorf("%s %s: %v: %s", this.executable, strings.Join(args, " "), err, strings.TrimSpace(output))
	}
	return output, nil
}

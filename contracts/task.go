package contracts

import (
	"fmt"
	"net/url"
)

type TaskState string

const (
	StatePending          TaskState = "pending"
	StateDownloading      TaskState = "downloading"
	StateDownloadComplete TaskState = "download-complete"
	StateAwaitingInstall  TaskState = "awaiting-install"
	StateInstallRequested TaskState = "install-requested"
	StateInstallSucceeded TaskState = "install-succeeded"
	StateInstallFailed    TaskState = "install-failed"
	StateCancelled        TaskState = "cancelled"
)

// transitions holds every legal forward edge of the task state machine.
// The only backward edge is install-failed -> awaiting-install (explicit retry).
var transitions = map[TaskState][]TaskState{
	StatePending:          {StateDownloading},
	StateDownloading:      {StateDownloadComplete, StateCancelled, StateInstallFailed},
	StateDownloadComplete: {StateAwaitingInstall},
	StateAwaitingInstall:  {StateInstallRequested, StateInstallFailed},
	StateInstallRequested: {StateInstallSucceeded, StateInstallFailed},
	StateInstallFailed:    {StateAwaitingInstall},
}

func (this TaskState) CanTransitionTo(next TaskState) bool {
	for _, candidate := range transitions[this] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (this TaskState) IsTerminal() bool {
	switch this {
	case StateInstallSucceeded, StateInstallFailed, StateCancelled:
		return true
	}
	return false
}

// DownloadTask tracks one transfer from creation to a terminal state.
type DownloadTask struct {
	ID                string
	ArtifactID        string
	SourceURL         url.URL
	LocalPath         string
	ExpectedSizeBytes int64
	BytesReceived     int64
	State             TaskState
}

func (this DownloadTask) Title() string {
	return fmt.Sprintf("[%s @ %s]", this.ArtifactID, this.LocalPath)
}

// InstallRequest is the caller's description of what to fetch and where to put it.
type InstallRequest struct {
	ArtifactID        string
	SourceURL         url.URL
	LocalPath         string
	ExpectedSizeBytes int64
	MD5Checksum       []byte // optional; verified after download when present
}

// ProgressEvent is emitted on every received chunk and on every state change.
// TaskID is stable across the whole task, including a resume after restart,
// so subscribers can correlate events with the originating task.
// Percent is only meaningful when the expected size is known.
type ProgressEvent struct {
	TaskID            string
	ArtifactID        string
	State             TaskState
	BytesReceived     int64
	ExpectedSizeBytes int64
	Percent           int
	Failure           *InstallError   // populated when State == StateInstallFailed
	Outcome           *InstallOutcome // populated on session-strategy terminal events
}

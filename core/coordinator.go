package core

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"hash"
	"io"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cskr/pubsub"
	"github.com/google/uuid"

	"github.com/sideloadhq/depot/contracts"
)

const DefaultChunkSize = 64 * 1024

const eventBuffer = 1024

type CoordinatorFileSystem interface {
	contracts.FileOpener
	contracts.FileCreator
	contracts.FileChecker
	contracts.Deleter
}

// Coordinator drives a DownloadTask from creation to a terminal state. It
// owns the single pending-install slot: one task at a time, durable across
// process restarts via the record store.
type Coordinator struct {
	downloader contracts.Downloader
	installer  contracts.PlatformInstaller
	records    contracts.RecordStore
	filesystem CoordinatorFileSystem
	strategy   contracts.InstallStrategy
	chunkSize  int
	bus        *pubsub.PubSub

	mu     sync.Mutex
	active *activeTask
}

type activeTask struct {
	contracts.DownloadTask
	expectedChecksum []byte
	cancelled        atomic.Bool
}

func NewCoordinator(
	downloader contracts.Downloader,
	installer contracts.PlatformInstaller,
	records contracts.RecordStore,
	filesystem CoordinatorFileSystem,
	strategy contracts.InstallStrategy,
	chunkSize int,
) *Coordinator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Coordinator{
		downloader: downloader,
		installer:  installer,
		records:    records,
		filesystem: filesystem,
		strategy:   strategy,
		chunkSize:  chunkSize,
		bus:        pubsub.New(eventBuffer),
	}
}

// Subscribe delivers every event published for the given artifact. The caller
// owns the returned channel and must Unsubscribe when done. Subscribers that
// fall behind miss events rather than stalling the transfer.
func (this *Coordinator) Subscribe(artifactID string) chan interface{} {
	return this.bus.Sub(artifactID)
}

func (this *Coordinator) Unsubscribe(channel chan interface{}, artifactID string) {
	this.bus.Unsub(channel, artifactID)
}

// StartInstall claims the pending slot and begins the transfer. The returned
// channel receives a ProgressEvent per chunk and per state change and is
// closed once the task parks or reaches a terminal state.
func (this *Coordinator) StartInstall(request contracts.InstallRequest) (<-chan contracts.ProgressEvent, error) {
	this.mu.Lock()
	if this.active != nil && !this.active.State.IsTerminal() {
		this.mu.Unlock()
		return nil, contracts.ErrInstallInProgress
	}
	task := &activeTask{
		DownloadTask: contracts.DownloadTask{
			ID:                uuid.NewString(),
			ArtifactID:        request.ArtifactID,
			SourceURL:         request.SourceURL,
			LocalPath:         request.LocalPath,
			ExpectedSizeBytes: request.ExpectedSizeBytes,
			State:             contracts.StatePending,
		},
		expectedChecksum: request.MD5Checksum,
	}
	this.active = task
	this.mu.Unlock()

	events := make(chan contracts.ProgressEvent, eventBuffer)
	go this.run(task, events)
	return events, nil
}

// Cancel requests cooperative cancellation of the active download. The write
// loop honors it between chunks. Only the download phase is cancellable; once
// the platform holds the install, there is nothing left to cancel here.
func (this *Coordinator) Cancel(artifactID string) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.active == nil || this.active.ArtifactID != artifactID {
		return contracts.ErrNotCancellable
	}
	switch this.active.State {
	case contracts.StatePending, contracts.StateDownloading:
		this.active.cancelled.Store(true)
		return nil
	}
	return contracts.ErrNotCancellable
}

// Retry re-enters the state machine at awaiting-install after an explicit
// user request, reusing the already-downloaded file.
func (this *Coordinator) Retry(artifactID string) (<-chan contracts.ProgressEvent, error) {
	this.mu.Lock()
	task := this.active
	if task == nil || task.ArtifactID != artifactID || task.State != contracts.StateInstallFailed {
		this.mu.Unlock()
		return nil, contracts.ErrNotRetryable
	}
	task.State = contracts.StateAwaitingInstall
	this.mu.Unlock()

	if _, err := this.filesystem.Stat(task.LocalPath); err != nil {
		this.mu.Lock()
		task.State = contracts.StateInstallFailed
		this.mu.Unlock()
		return nil, fmt.Errorf("downloaded file is gone, start over: %w", contracts.ErrNotRetryable)
	}

	events := make(chan contracts.ProgressEvent, eventBuffer)
	go func() {
		defer close(events)
		this.emit(task, events, nil, nil)
		this.install(task, events)
	}()
	return events, nil
}

// Dismiss releases the slot after the user acknowledges a failure or a parked
// fire-and-forget install. The downloaded file and the durable record are
// removed; the artifact can be installed again from scratch later.
func (this *Coordinator) Dismiss(artifactID string) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	task := this.active
	if task == nil || task.ArtifactID != artifactID {
		return contracts.ErrNotRetryable
	}
	switch task.State {
	case contracts.StateInstallFailed, contracts.StateInstallRequested, contracts.StateInstallSucceeded:
	default:
		return contracts.ErrNotRetryable
	}
	this.deleteQuietly(task.LocalPath)
	if IsBundle(task.LocalPath) {
		DiscardStaging(task.LocalPath)
	}
	this.clearRecord()
	this.active = nil
	return nil
}

// CheckAndResumeInstall inspects the durable record on app foreground/launch.
// A record whose file survived the restart re-enters the state machine at
// awaiting-install with no network transfer. A record whose file is gone is
// discarded. Returns whether a resume was actually performed.
func (this *Coordinator) CheckAndResumeInstall() bool {
	this.mu.Lock()
	if this.active != nil && !this.active.State.IsTerminal() {
		this.mu.Unlock()
		return false
	}
	this.mu.Unlock()

	record, found, err := this.records.Load()
	if err != nil {
		log.Println("[WARN] could not load pending install record:", err)
		return false
	}
	if !found {
		return false
	}

	info, err := this.filesystem.Stat(record.LocalPath)
	if err != nil {
		this.clearRecord()
		return false
	}

	taskID := record.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	task := &activeTask{
		DownloadTask: contracts.DownloadTask{
			ID:                taskID,
			ArtifactID:        record.ArtifactID,
			LocalPath:         record.LocalPath,
			ExpectedSizeBytes: info.Size(),
			BytesReceived:     info.Size(),
			State:             contracts.StateAwaitingInstall,
		},
	}
	this.mu.Lock()
	this.active = task
	this.mu.Unlock()

	go this.install(task, nil)
	return true
}

func (this *Coordinator) run(task *activeTask, events chan<- contracts.ProgressEvent) {
	this.transition(task, contracts.StateDownloading, events, nil, nil)

	if !this.download(task, events) {
		close(events)
		return
	}

	record := contracts.PendingInstallRecord{
		TaskID:     task.ID,
		ArtifactID: task.ArtifactID,
		LocalPath:  task.LocalPath,
		CreatedAt:  time.Now().UTC(),
		State:      contracts.StateDownloadComplete,
	}
	if err := this.records.Save(record); err != nil {
		log.Println("[WARN] could not persist pending install record:", err)
	}

	this.transition(task, contracts.StateDownloadComplete, events, nil, nil)
	this.transition(task, contracts.StateAwaitingInstall, events, nil, nil)
	this.install(task, events)
	close(events)
}

// download streams the remote binary to the local path in fixed-size chunks,
// emitting progress and honoring cancellation between chunks. Returns whether
// the transfer completed.
func (this *Coordinator) download(task *activeTask, events chan<- contracts.ProgressEvent) bool {
	body, size, err := this.downloader.Download(task.SourceURL)
	if err != nil {
		this.fail(task, events, contracts.ReasonDownload, err)
		return false
	}
	defer func() { _ = body.Close() }()

	if task.ExpectedSizeBytes <= 0 && size > 0 {
		this.mu.Lock()
		task.ExpectedSizeBytes = size
		this.mu.Unlock()
	}

	var hasher hash.Hash
	var source io.Reader = body
	if len(task.expectedChecksum) > 0 {
		hasher = md5.New()
		source = NewHashReader(body, hasher)
	}

	destination, err := this.filesystem.Create(task.LocalPath)
	if err != nil {
		this.fail(task, events, contracts.ReasonDownload, err)
		return false
	}

	buffer := make([]byte, this.chunkSize)
	for {
		if task.cancelled.Load() {
			_ = destination.Close()
			this.abandonDownload(task, events)
			return false
		}
		count, err := source.Read(buffer)
		if count > 0 {
			if _, writeErr := destination.Write(buffer[:count]); writeErr != nil {
				_ = destination.Close()
				this.discardPartial(task)
				this.fail(task, events, contracts.ReasonDownload, writeErr)
				return false
			}
			this.advance(task, int64(count))
			this.emit(task, events, nil, nil)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = destination.Close()
			this.discardPartial(task)
			this.fail(task, events, contracts.ReasonDownload, err)
			return false
		}
	}

	if err := destination.Close(); err != nil {
		this.discardPartial(task)
		this.fail(task, events, contracts.ReasonDownload, err)
		return false
	}

	if hasher != nil && !bytes.Equal(hasher.Sum(nil), task.expectedChecksum) {
		this.discardPartial(task)
		this.fail(task, events, contracts.ReasonDownload, fmt.Errorf("checksum mismatch for %s", task.Title()))
		return false
	}
	return true
}

// advance grows the received-byte counter, never past the expected size.
func (this *Coordinator) advance(task *activeTask, count int64) {
	this.mu.Lock()
	defer this.mu.Unlock()
	task.BytesReceived += count
	if task.ExpectedSizeBytes > 0 && task.BytesReceived > task.ExpectedSizeBytes {
		task.BytesReceived = task.ExpectedSizeBytes
	}
}

func (this *Coordinator) abandonDownload(task *activeTask, events chan<- contracts.ProgressEvent) {
	this.discardPartial(task)
	this.clearRecord()
	this.transition(task, contracts.StateCancelled, events, nil, nil)
}

func (this *Coordinator) install(task *activeTask, events chan<- contracts.ProgressEvent) {
	if !this.installer.HasInstallPermission() {
		this.fail(task, events, contracts.ReasonPermission, fmt.Errorf("install permission not granted"))
		return
	}

	record := contracts.PendingInstallRecord{
		TaskID:     task.ID,
		ArtifactID: task.ArtifactID,
		LocalPath:  task.LocalPath,
		CreatedAt:  time.Now().UTC(),
		State:      contracts.StateInstallRequested,
	}
	if err := this.records.Save(record); err != nil {
		log.Println("[WARN] could not persist pending install record:", err)
	}

	this.transition(task, contracts.StateInstallRequested, events, nil, nil)

	if this.strategy == contracts.StrategyDirect {
		this.installDirect(task, events)
	} else {
		this.installSession(task, events)
	}
}

// installDirect fires the platform's open-with-installer request. No outcome
// is observable on this path, so the task parks at install-requested and the
// record stays behind for the next foreground reconciliation.
func (this *Coordinator) installDirect(task *activeTask, events chan<- contracts.ProgressEvent) {
	if IsBundle(task.LocalPath) {
		this.fail(task, events, contracts.ReasonPlatform,
			fmt.Errorf("split bundle %s requires the session strategy", task.Title()))
		return
	}
	if err := this.installer.InstallDirect(task.LocalPath); err != nil {
		this.fail(task, events, contracts.ReasonPlatform, err)
		return
	}
	log.Printf("Installation started for %s; outcome is not observable on the direct path.", task.Title())
}

func (this *Coordinator) installSession(task *activeTask, events chan<- contracts.ProgressEvent) {
	handle, err := this.installer.CreateSession()
	if err != nil {
		this.fail(task, events, contracts.ReasonPlatform, err)
		return
	}
	err = this.writeSession(task, handle)
	if IsBundle(task.LocalPath) {
		// The splits are fully streamed into the session by now.
		DiscardStaging(task.LocalPath)
	}
	if err != nil {
		this.fail(task, events, contracts.ReasonPlatform, err)
		return
	}

	outcomes := make(chan contracts.InstallOutcome, 1)
	var once sync.Once
	callback := func(outcome contracts.InstallOutcome) {
		once.Do(func() { outcomes <- outcome })
	}
	if err := this.installer.CommitSession(handle, callback); err != nil {
		this.fail(task, events, contracts.ReasonPlatform, err)
		return
	}
	this.handleOutcome(task, events, <-outcomes)
}

func (this *Coordinator) writeSession(task *activeTask, handle contracts.SessionHandle) error {
	paths := []string{task.LocalPath}
	if IsBundle(task.LocalPath) {
		splits, err := StageBundle(task.LocalPath, StagingDir(task.LocalPath))
		if err != nil {
			return err
		}
		paths = splits
	}
	for _, path := range paths {
		if err := this.writeSessionFile(handle, path); err != nil {
			return err
		}
	}
	return nil
}

func (this *Coordinator) writeSessionFile(handle contracts.SessionHandle, path string) error {
	info, err := this.filesystem.Stat(path)
	if err != nil {
		return err
	}
	source, err := this.filesystem.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()
	return this.installer.WriteToSession(handle, filepath.Base(path), info.Size(), source)
}

func (this *Coordinator) handleOutcome(task *activeTask, events chan<- contracts.ProgressEvent, outcome contracts.InstallOutcome) {
	switch outcome.Status {
	case contracts.OutcomeSuccess:
		this.clearRecord()
		this.transition(task, contracts.StateInstallSucceeded, events, nil, &outcome)
	case contracts.OutcomePendingUserAction:
		// The record stays: the platform confirmation may outlive this process.
		this.emit(task, events, nil, &outcome)
	default:
		this.clearRecord()
		failure := contracts.NewInstallError(contracts.ReasonPlatform, fmt.Errorf("%s", outcome.Reason))
		this.setState(task, contracts.StateInstallFailed)
		this.emit(task, events, failure, &outcome)
	}
}

// fail clears the record and surfaces the typed reason. Install-phase callers
// leave the downloaded file in place so an explicit retry can skip the
// network; download-phase callers discard the partial file first.
func (this *Coordinator) fail(task *activeTask, events chan<- contracts.ProgressEvent, reason contracts.FailureReason, err error) {
	this.clearRecord()
	failure := contracts.NewInstallError(reason, err)
	log.Println("[WARN]", failure)
	this.setState(task, contracts.StateInstallFailed)
	this.emit(task, events, failure, nil)
}

func (this *Coordinator) transition(task *activeTask, next contracts.TaskState, events chan<- contracts.ProgressEvent, failure *contracts.InstallError, outcome *contracts.InstallOutcome) {
	this.mu.Lock()
	if !task.State.CanTransitionTo(next) {
		this.mu.Unlock()
		log.Printf("[WARN] illegal transition %s -> %s for %s", task.State, next, task.Title())
		return
	}
	task.State = next
	this.mu.Unlock()
	this.emit(task, events, failure, outcome)
}

func (this *Coordinator) setState(task *activeTask, next contracts.TaskState) {
	this.mu.Lock()
	defer this.mu.Unlock()
	task.State = next
}

func (this *Coordinator) emit(task *activeTask, events chan<- contracts.ProgressEvent, failure *contracts.InstallError, outcome *contracts.InstallOutcome) {
	this.mu.Lock()
	event := contracts.ProgressEvent{
		TaskID:            task.ID,
		ArtifactID:        task.ArtifactID,
		State:             task.State,
		BytesReceived:     task.BytesReceived,
		ExpectedSizeBytes: task.ExpectedSizeBytes,
		Percent:           Percent(task.BytesReceived, task.ExpectedSizeBytes),
		Failure:           failure,
		Outcome:           outcome,
	}
	this.mu.Unlock()
	if events != nil {
		events <- event
	}
	this.bus.TryPub(event, task.ArtifactID)
}

func (this *Coordinator) discardPartial(task *activeTask) {
	this.deleteQuietly(task.LocalPath)
}

func (this *Coordinator) deleteQuietly(path string) {
	if _, err := this.filesystem.Stat(path); err != nil {
		return
	}
	if err := this.filesystem.Delete(path); err != nil {
		log.Println("[WARN] could not delete", path, err)
	}
}

func (this *Coordinator) clearRecord() {
	if err := this.records.Clear(); err != nil {
		log.Println("[WARN] could not clear pending install record:", err)
	}
}

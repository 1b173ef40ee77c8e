package main

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/sideloadhq/depot/contracts"
	"github.com/sideloadhq/depot/core"
	"github.com/sideloadhq/depot/shell"
)

func installMain(args []string) {
	config, remaining := ParseConfig("install", args)
	if len(remaining) != 1 {
		log.Fatal("usage: depot install [flags] <artifact-id>")
	}
	artifactID := remaining[0]

	catalog := shell.NewCatalogClient(shell.NewHTTPClient(), config.CatalogAddress)
	artifact, err := catalog.Get(artifactID)
	if err != nil {
		log.Fatal(err)
	}

	coordinator, _ := buildCoordinator(config)
	source := artifact.BinaryURL.Value()
	request := contracts.InstallRequest{
		ArtifactID:        artifact.ID,
		SourceURL:         *source,
		LocalPath:         config.DownloadPath(path.Base(source.Path)),
		ExpectedSizeBytes: artifact.SizeBytes,
		MD5Checksum:       artifact.MD5Checksum,
	}

	events, err := coordinator.StartInstall(request)
	if err != nil {
		log.Fatal(err)
	}
	cancelOnInterrupt(coordinator, artifact.ID)

	succeeded := renderProgress(events)
	if !succeeded {
		os.Exit(1)
	}
	if err := catalog.IncrementDownloads(artifact.ID); err != nil {
		log.Println("[WARN] could not record the download:", err)
	}
}

func resumeMain(args []string) {
	config, _ := ParseConfig("resume", args)

	records := shell.NewDiskRecordSlot(config.RecordPath())
	record, found, err := records.Load()
	if err != nil {
		log.Fatal(err)
	}
	if !found {
		log.Println("Nothing to resume.")
		return
	}

	coordinator, strategy := buildCoordinator(config)
	subscription := coordinator.Subscribe(record.ArtifactID)
	defer coordinator.Unsubscribe(subscription, record.ArtifactID)

	if !coordinator.CheckAndResumeInstall() {
		log.Println("Nothing to resume.")
		return
	}
	log.Printf("Resuming install of [%s] from [%s]...", record.ArtifactID, record.LocalPath)

	lastPercent := -1
	for raw := range subscription {
		event, ok := raw.(contracts.ProgressEvent)
		if !ok {
			continue
		}
		renderEvent(event, &lastPercent)
		if event.State.IsTerminal() {
			if event.State != contracts.StateInstallSucceeded {
				os.Exit(1)
			}
			return
		}
		if parked(event, strategy) {
			return
		}
	}
}

func buildCoordinator(config Config) (*core.Coordinator, contracts.InstallStrategy) {
	installer, strategy := shell.ProbeInstaller(shell.NewADB(config.ADBPath, config.DeviceSerial))
	records := shell.NewDiskRecordSlot(config.RecordPath())
	downloader := buildDownloader(config)
	coordinator := core.NewCoordinator(
		downloader, installer, records, shell.NewDiskFileSystem(), strategy, config.ChunkSize)
	return coordinator, strategy
}

// buildDownloader routes by scheme: plain HTTP(S) always works; gs:// sources
// additionally need Google credentials in the environment.
func buildDownloader(config Config) contracts.Downloader {
	blob := gcsDownloader(config)
	return shell.NewSchemeRouter(shell.NewHTTPDownloader(shell.NewHTTPClient()), blob)
}

func gcsDownloader(config Config) contracts.Downloader {
	parser := core.NewGoogleCredentialParser(shell.NewDiskFileSystem(), shell.NewEnvironment())
	credentials, err := parser.Parse()
	if err != nil {
		return unavailableDownloader{err: err}
	}
	client := shell.NewGoogleCloudStorageClient(shell.NewHTTPClient(), credentials, http.StatusOK)
	return core.NewRetryClient(client, config.MaxRetry, time.Sleep)
}

func cancelOnInterrupt(coordinator *core.Coordinator, artifactID string) {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		log.Println("Cancelling...")
		if err := coordinator.Cancel(artifactID); err != nil {
			log.Println("[WARN]", err)
		}
	}()
}

// renderProgress drains the event stream to the log and reports whether the
// task ended in success (a parked fire-and-forget install counts).
func renderProgress(events <-chan contracts.ProgressEvent) bool {
	lastPercent := -1
	failed := false
	for event := range events {
		renderEvent(event, &lastPercent)
		if event.Failure != nil || event.State == contracts.StateCancelled {
			failed = true
		}
	}
	return !failed
}

func renderEvent(event contracts.ProgressEvent, lastPercent *int) {
	switch event.State {
	case contracts.StateDownloading:
		if event.Percent != *lastPercent {
			*lastPercent = event.Percent
			log.Printf("Downloading... %s of %s (%d%%)",
				core.HumanFileSize(float64(event.BytesReceived)),
				core.HumanFileSize(float64(event.ExpectedSizeBytes)),
				event.Percent)
		}
	case contracts.StateDownloadComplete:
		log.Println("Download complete.")
	case contracts.StateInstallRequested:
		log.Println("Handing the package to the installer...")
	case contracts.StateInstallSucceeded:
		log.Println("Installed.")
	case contracts.StateInstallFailed:
		if event.Failure != nil {
			log.Println("Install failed:", event.Failure)
		} else {
			log.Println("Install failed.")
		}
	case contracts.StateCancelled:
		log.Println("Cancelled.")
	}
	if event.Outcome != nil && event.Outcome.Status == contracts.OutcomePendingUserAction {
		log.Println("Waiting on device confirmation; run 'depot resume' after confirming.")
	}
}

func parked(event contracts.ProgressEvent, strategy contracts.InstallStrategy) bool {
	if event.Outcome != nil && event.Outcome.Status == contracts.OutcomePendingUserAction {
		return true
	}
	return strategy == contracts.StrategyDirect && event.State == contracts.StateInstallRequested
}

type unavailableDownloader struct {
	err error
}

func (this unavailableDownloader) Download(url.URL) (io.ReadCloser, int64, error) {
	return nil, 0, this.err
}

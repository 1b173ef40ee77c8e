package core

import (
	"errors"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/sideloadhq/depot/contracts"
)

// RetryClient decorates remote storage with bounded retries. Only failures
// wrapping contracts.RetryErr are retried; permanent failures return at once.
type RetryClient struct {
	inner    contracts.RemoteStorage
	maxRetry int
	sleep    func(duration time.Duration)
}

func NewRetryClient(inner contracts.RemoteStorage, maxRetry int, sleep func(duration time.Duration)) *RetryClient {
	return &RetryClient{inner: inner, maxRetry: maxRetry, sleep: sleep}
}

func (this *RetryClient) Upload(request contracts.UploadRequest) (err error) {
	for x := 0; x <= this.maxRetry; x++ {
		err = this.inner.Upload(request)
		if err == nil {
			return nil
		}
		if !errors.Is(err, contracts.RetryErr) {
			return err
		}
		if x < this.maxRetry {
			log.Println("[WARN] upload failed, retry imminent.")
			this.sleep(time.Second * 3)
			if _, err = request.Body.Seek(0, io.SeekStart); err != nil {
				return err
			}
		}
	}
	return err
}

func (this *RetryClient) Download(address url.URL) (body io.ReadCloser, size int64, err error) {
	for x := 0; x <= this.maxRetry; x++ {
		body, size, err = this.inner.Download(address)
		if err == nil {
			return body, size, nil
		}
		if !errors.Is(err, contracts.RetryErr) {
			return nil, 0, err
		}
		if x < this.maxRetry {
			log.Println("[WARN] download failed, retry imminent.")
			this.sleep(time.Second * 3)
		}
	}
	return nil, 0, err
}

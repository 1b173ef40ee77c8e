package shell

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sideloadhq/depot/contracts"
)

// NewHTTPClient builds a client suitable for long binary transfers: no global
// timeout, cancellation belongs to the caller.
func NewHTTPClient() *http.Client {
	return &http.Client{}
}

// HTTPDownloader streams artifacts over plain HTTP(S). Server errors are
// marked retryable; client errors are permanent.
type HTTPDownloader struct {
	client *http.Client
}

func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	return &HTTPDownloader{client: client}
}

func (this *HTTPDownloader) Download(address url.URL) (io.ReadCloser, int64, error) {
	response, err := this.client.Get(address.String())
	if err != nil {
		return nil, 0, fmt.Errorf("download of %q failed: %v: %w", address.String(), err, contracts.RetryErr)
	}
	if response.StatusCode >= http.StatusInternalServerError {
		_ = response.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status code: %s: %w", response.Status, contracts.RetryErr)
	}
	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status code: %s", response.Status)
	}
	return response.Body, response.ContentLength, nil
}

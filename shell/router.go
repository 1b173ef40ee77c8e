package shell

import (
	"fmt"
	"io"
	"net/url"

	"github.com/sideloadhq/depot/contracts"
)

// SchemeRouter picks the blob transport by URL scheme: gs:// goes to cloud
// storage, everything else to plain HTTP(S).
type SchemeRouter struct {
	http contracts.Downloader
	gcs  contracts.Downloader
}

func NewSchemeRouter(httpDownloader, gcsDownloader contracts.Downloader) *SchemeRouter {
	return &SchemeRouter{http: httpDownloader, gcs: gcsDownloader}
}

func (this *SchemeRouter) Download(address url.URL) (io.ReadCloser, int64, error) {
	switch address.Scheme {
	case "gs", "gcs":
		return this.gcs.Download(address)
	case "http", "https":
		return this.http.Download(address)
	}
	return nil, 0, fmt.Errorf("unsupported remote address scheme: %q", address.Scheme)
}

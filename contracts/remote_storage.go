package contracts

import (
	"io"
	"net/url"
)

type RemoteStorage interface {
	Uploader
	Downloader
}

type Uploader interface {
	Upload(UploadRequest) error
}

type UploadRequest struct {
	RemoteAddress url.URL
	Body          io.ReadSeeker
	Size          int64
	ContentType   string
	Checksum      []byte
}

// Downloader streams a remote resource. The returned size is the total
// content length when the server reports one, or -1 when unknown.
type Downloader interface {
	Download(address url.URL) (body io.ReadCloser, size int64, err error)
}

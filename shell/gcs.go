package shell

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/smarty/gcs"

	"github.com/sideloadhq/depot/contracts"
)

// GoogleCloudStorageClient serves artifacts addressed with gs:// URLs, where
// the host is the bucket and the path is the object.
type GoogleCloudStorageClient struct {
	client         *http.Client
	credentials    gcs.Credentials
	expectedStatus int
}

func NewGoogleCloudStorageClient(client *http.Client, credentials gcs.Credentials, expectedStatus int) *GoogleCloudStorageClient {
	return &GoogleCloudStorageClient{client: client, credentials: credentials, expectedStatus: expectedStatus}
}

func (this *GoogleCloudStorageClient) Upload(request contracts.UploadRequest) error {
	gcsRequest, err := gcs.NewRequest("PUT",
		gcs.WithCredentials(this.credentials),
		gcs.WithBucket(request.RemoteAddress.Host),
		gcs.WithResource(request.RemoteAddress.Path),
		gcs.PutWithContent(request.Body),
		gcs.PutWithContentLength(request.Size),
		gcs.PutWithContentMD5(request.Checksum),
		gcs.PutWithContentType(request.ContentType),
	)
	if err != nil {
		return err
	}
	response, err := this.client.Do(gcsRequest)
	if err != nil {
		return fmt.Errorf("%v: %w", err, contracts.RetryErr)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode != this.expectedStatus {
		this.dump(gcsRequest, response)
		return fmt.Errorf("unexpected status code: %s: %w", response.Status, contracts.RetryErr)
	}
	return nil
}

func (this *GoogleCloudStorageClient) Download(address url.URL) (io.ReadCloser, int64, error) {
	gcsRequest, err := gcs.NewRequest("GET",
		gcs.WithCredentials(this.credentials),
		gcs.WithBucket(address.Host),
		gcs.WithResource(address.Path),
	)
	if err != nil {
		return nil, 0, err
	}
	response, err := this.client.Do(gcsRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("%v: %w", err, contracts.RetryErr)
	}
	if response.StatusCode != this.expectedStatus {
		_ = response.Body.Close()
		this.dump(gcsRequest, response)
		return nil, 0, fmt.Errorf("unexpected status code: %s: %w", response.Status, contracts.RetryErr)
	}
	return response.Body, response.ContentLength, nil
}

func (this *GoogleCloudStorageClient) dump(request *http.Request, response *http.Response) {
	requestDump, _ := httputil.DumpRequestOut(request, false)
	responseDump, _ := httputil.DumpResponse(response, false)
	log.Printf("unexpected status code: \nrequest: \n%s\nresponse:\n%s", requestDump, responseDump)
}

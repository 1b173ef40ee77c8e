package shell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/sideloadhq/depot/contracts"
)

// CatalogClient talks JSON-over-HTTP to the artifact catalog backend.
type CatalogClient struct {
	client  *http.Client
	baseURL url.URL
}

func NewCatalogClient(client *http.Client, baseURL url.URL) *CatalogClient {
	return &CatalogClient{client: client, baseURL: baseURL}
}

func (this *CatalogClient) List() (artifacts []contracts.Artifact, err error) {
	err = this.get(this.resource("artifacts"), &artifacts)
	return artifacts, err
}

func (this *CatalogClient) Get(id string) (artifact contracts.Artifact, err error) {
	err = this.get(this.resource("artifacts", id), &artifact)
	return artifact, err
}

func (this *CatalogClient) Search(substring string) (artifacts []contracts.Artifact, err error) {
	address := this.resource("artifacts")
	query := address.Query()
	query.Set("q", substring)
	address.RawQuery = query.Encode()
	err = this.get(address, &artifacts)
	return artifacts, err
}

func (this *CatalogClient) Create(artifact contracts.Artifact) (created contracts.Artifact, err error) {
	if err = artifact.Validate(); err != nil {
		return created, err
	}
	err = this.send(http.MethodPost, this.resource("artifacts"), artifact, &created)
	return created, err
}

func (this *CatalogClient) Update(artifact contracts.Artifact) error {
	if err := artifact.Validate(); err != nil {
		return err
	}
	return this.send(http.MethodPut, this.resource("artifacts", artifact.ID), artifact, nil)
}

func (this *CatalogClient) Delete(id string) error {
	return this.send(http.MethodDelete, this.resource("artifacts", id), nil, nil)
}

func (this *CatalogClient) TogglePinned(id string) error {
	return this.send(http.MethodPost, this.resource("artifacts", id, "pin"), nil, nil)
}

func (this *CatalogClient) IncrementDownloads(id string) error {
	return this.send(http.MethodPost, this.resource("artifacts", id, "downloads"), nil, nil)
}

func (this *CatalogClient) resource(segments ...string) url.URL {
	address := this.baseURL
	address.Path = path.Join(append([]string{address.Path}, segments...)...)
	return address
}

func (this *CatalogClient) get(address url.URL, target interface{}) error {
	response, err := this.client.Get(address.String())
	if err != nil {
		return fmt.Errorf("%v: %w", err, contracts.RetryErr)
	}
	return this.decode(response, target)
}

func (this *CatalogClient) send(method string, address url.URL, body interface{}, target interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}
	request, err := http.NewRequest(method, address.String(), payload)
	if err != nil {
		return err
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := this.client.Do(request)
	if err != nil {
		return fmt.Errorf("%v: %w", err, contracts.RetryErr)
	}
	return this.decode(response, target)
}

func (this *CatalogClient) decode(response *http.Response, target interface{}) error {
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %s", response.Status)
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(target)
}

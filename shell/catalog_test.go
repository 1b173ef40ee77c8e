package shell

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"

	"github.com/sideloadhq/depot/contracts"
)

func TestCatalogClientFixture(t *testing.T) {
	gunit.Run(new(CatalogClientFixture), t)
}

type CatalogClientFixture struct {
	*gunit.Fixture

	server   *httptest.Server
	requests []*http.Request
	status   int
	payload  interface{}
	client   *CatalogClient
}

func (this *CatalogClientFixture) Setup() {
	this.status = http.StatusOK
	this.server = httptest.NewServer(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		this.requests = append(this.requests, request)
		response.WriteHeader(this.status)
		if this.payload != nil {
			_ = json.NewEncoder(response).Encode(this.payload)
		}
	}))
	address, err := url.Parse(this.server.URL)
	this.So(err, should.BeNil)
	this.client = NewCatalogClient(this.server.Client(), *address)
}

func (this *CatalogClientFixture) Teardown() {
	this.server.Close()
}

func (this *CatalogClientFixture) validArtifact() contracts.Artifact {
	return contracts.Artifact{
		ID:          "abc123",
		Name:        "Example App",
		PackageID:   "com.example.app",
		VersionName: "1.2.3",
		BinaryURL:   contracts.URL{Scheme: "https", Host: "cdn", Path: "/a.apk"},
	}
}

func (this *CatalogClientFixture) TestList() {
	this.payload = []contracts.Artifact{this.validArtifact()}

	artifacts, err := this.client.List()

	this.So(err, should.BeNil)
	this.So(len(artifacts), should.Equal, 1)
	this.So(artifacts[0].PackageID, should.Equal, "com.example.app")
	this.So(this.requests[0].Method, should.Equal, http.MethodGet)
	this.So(this.requests[0].URL.Path, should.Equal, "/artifacts")
}

func (this *CatalogClientFixture) TestGet() {
	this.payload = this.validArtifact()

	artifact, err := this.client.Get("abc123")

	this.So(err, should.BeNil)
	this.So(artifact.ID, should.Equal, "abc123")
	this.So(this.requests[0].URL.Path, should.Equal, "/artifacts/abc123")
}

func (this *CatalogClientFixture) TestSearchSendsTheSubstring() {
	this.payload = []contracts.Artifact{}

	_, err := this.client.Search("calc")

	this.So(err, should.BeNil)
	this.So(this.requests[0].URL.Query().Get("q"), should.Equal, "calc")
}

func (this *CatalogClientFixture) TestCreatePostsTheArtifact() {
	this.payload = this.validArtifact()

	created, err := this.client.Create(this.validArtifact())

	this.So(err, should.BeNil)
	this.So(created.ID, should.Equal, "abc123")
	this.So(this.requests[0].Method, should.Equal, http.MethodPost)
	this.So(this.requests[0].Header.Get("Content-Type"), should.Equal, "application/json")
}

func (this *CatalogClientFixture) TestCreateRejectsInvalidArtifactWithoutARequest() {
	_, err := this.client.Create(contracts.Artifact{})

	this.So(err, should.NotBeNil)
	this.So(this.requests, should.BeEmpty)
}

func (this *CatalogClientFixture) TestUpdateDeleteTogglePinIncrement() {
	this.So(this.client.Update(this.validArtifact()), should.BeNil)
	this.So(this.client.Delete("abc123"), should.BeNil)
	this.So(this.client.TogglePinned("abc123"), should.BeNil)
	this.So(this.client.IncrementDownloads("abc123"), should.BeNil)

	this.So(this.requests[0].Method, should.Equal, http.MethodPut)
	this.So(this.requests[1].Method, should.Equal, http.MethodDelete)
	this.So(this.requests[2].URL.Path, should.Equal, "/artifacts/abc123/pin")
	this.So(this.requests[3].URL.Path, should.Equal, "/artifacts/abc123/downloads")
}

func (this *CatalogClientFixture) TestUnexpectedStatusIsAnError() {
	this.status = http.StatusNotFound

	_, err := this.client.Get("missing")

	this.So(err, should.NotBeNil)
}

package core

import (
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"

	"github.com/sideloadhq/depot/fs"
)

func TestCredentialParserFixture(t *testing.T) {
	gunit.Run(new(CredentialParserFixture), t)
}

type CredentialParserFixture struct {
	*gunit.Fixture

	storage     *fs.InMemoryFileSystem
	environment *FakeEnvironment
	parser      CredentialParser
}

func (this *CredentialParserFixture) Setup() {
	this.storage = fs.NewInMemoryFileSystem()
	this.environment = &FakeEnvironment{values: make(map[string]string)}
	this.parser = NewGoogleCredentialParser(this.storage, this.environment)
}

func (this *CredentialParserFixture) TestNoCredentialSourceIsAnError() {
	_, err := this.parser.Parse()
	this.So(err, should.NotBeNil)
}

func (this *CredentialParserFixture) TestBlankVariablesAreIgnored() {
	this.environment.values["DEPOT_GOOGLE_CREDENTIALS"] = "  "
	this.environment.values["GOOGLE_APPLICATION_CREDENTIALS"] = ""
	_, err := this.parser.Parse()
	this.So(err, should.NotBeNil)
	this.So(errors.Is(err, os.ErrNotExist), should.BeFalse)
}

func (this *CredentialParserFixture) TestMissingFileIsAnError() {
	this.environment.values["GOOGLE_APPLICATION_CREDENTIALS"] = "/secrets/google.json"
	_, err := this.parser.Parse()
	this.So(errors.Is(err, os.ErrNotExist), should.BeTrue)
}

func (this *CredentialParserFixture) TestMalformedFileIsAnError() {
	this.environment.values["GOOGLE_APPLICATION_CREDENTIALS"] = "/secrets/google.json"
	_ = this.storage.WriteFile("/secrets/google.json", []byte("{not json"))
	_, err := this.parser.Parse()
	this.So(err, should.NotBeNil)
	this.So(errors.Is(err, os.ErrNotExist), should.BeFalse)
}

func (this *CredentialParserFixture) TestDepotOverrideWinsOverConventionalVariable() {
	this.environment.values["DEPOT_GOOGLE_CREDENTIALS"] = "/secrets/depot.json"
	this.environment.values["GOOGLE_APPLICATION_CREDENTIALS"] = "/secrets/google.json"
	_ = this.storage.WriteFile("/secrets/depot.json", []byte("{not json"))

	_, err := this.parser.Parse()

	// A read of the depot path (present but malformed), not the google path
	// (absent), proves the override took precedence.
	this.So(err, should.NotBeNil)
	this.So(errors.Is(err, os.ErrNotExist), should.BeFalse)
}

func (this *CredentialParserFixture) TestFallsBackToApplicationDefaultCredentials() {
	this.environment.values["HOME"] = "/home/user"
	adc := "/home/user/.config/gcloud/application_default_credentials.json"
	_ = this.storage.WriteFile(adc, []byte("{not json"))

	_, err := this.parser.Parse()

	this.So(err, should.NotBeNil)
	this.So(errors.Is(err, os.ErrNotExist), should.BeFalse)
}

////////////////////////////////////////

type FakeEnvironment struct {
	values map[string]string
}

func (this *FakeEnvironment) LookupEnv(key string) (string, bool) {
	value, set := this.values[key]
	return value, set
}

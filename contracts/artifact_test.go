package contracts

import (
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"
)

func TestArtifactFixture(t *testing.T) {
	gunit.Run(new(ArtifactFixture), t)
}

type ArtifactFixture struct {
	*gunit.Fixture

	artifact Artifact
}

func (this *ArtifactFixture) Setup() {
	this.artifact = Artifact{
		ID:          "abc123",
		Name:        "Example App",
		PackageID:   "com.example.app",
		VersionName: "1.2.3",
		VersionCode: 10203,
		BinaryURL:   URL{Scheme: "https", Host: "cdn.example.com", Path: "/binaries/abc123.apk"},
	}
}

func (this *ArtifactFixture) TestValidatePopulatedArtifact_NoError() {
	this.So(this.artifact.Validate(), should.BeNil)
}

func (this *ArtifactFixture) TestValidateRequiresName() {
	this.artifact.Name = ""

	this.So(this.artifact.Validate(), should.NotBeNil)
}

func (this *ArtifactFixture) TestValidateRequiresPackageID() {
	this.artifact.PackageID = ""

	this.So(this.artifact.Validate(), should.NotBeNil)
}

func (this *ArtifactFixture) TestValidateRequiresVersionName() {
	this.artifact.VersionName = ""

	this.So(this.artifact.Validate(), should.NotBeNil)
}

func (this *ArtifactFixture) TestValidateRequiresBinaryAddress() {
	this.artifact.BinaryURL = URL{}

	this.So(this.artifact.Validate(), should.NotBeNil)
}

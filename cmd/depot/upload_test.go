package main

import (
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"
)

func TestUploadFixture(t *testing.T) {
	gunit.Run(new(UploadFixture), t)
}

type UploadFixture struct {
	*gunit.Fixture

	upload uploadConfig
}

func (this *UploadFixture) Setup() {
	this.upload = uploadConfig{
		PackageID:    "com.example.app",
		VersionName:  "1.2.3",
		RemotePrefix: "gs://bucket/artifacts",
	}
}

func (this *UploadFixture) TestBinaryAndIconShareTheVersionedPrefix() {
	binary := composeRemoteAddress(this.upload, "app.apk")
	icon := composeRemoteAddress(this.upload, "icon.png")

	this.So(binary.String(), should.Equal, "gs://bucket/artifacts/com.example.app/1.2.3/app.apk")
	this.So(icon.String(), should.Equal, "gs://bucket/artifacts/com.example.app/1.2.3/icon.png")
}

func (this *UploadFixture) TestIconContentTypeByExtension() {
	this.So(contentTypeOf("/art/icon.png"), should.Equal, "image/png")
	this.So(contentTypeOf("/art/icon.mystery"), should.Equal, "application/octet-stream")
}

package core

import (
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"
)

func TestProgressFixture(t *testing.T) {
	gunit.Run(new(ProgressFixture), t)
}

type ProgressFixture struct {
	*gunit.Fixture
}

func (this *ProgressFixture) TestPercentBounds() {
	this.So(Percent(0, 1000), should.Equal, 0)
	this.So(Percent(-5, 1000), should.Equal, 0)
	this.So(Percent(500, 1000), should.Equal, 50)
	this.So(Percent(1000, 1000), should.Equal, 100)
	this.So(Percent(2000, 1000), should.Equal, 100)
}

func (this *ProgressFixture) TestPercentWithUnknownTotal() {
	this.So(Percent(12345, 0), should.Equal, 0)
	this.So(Percent(12345, -1), should.Equal, 0)
}

func (this *ProgressFixture) TestPercentIsMonotonicOverAnyChunkSequence() {
	previous := 0
	var received int64
	for _, chunk := range []int64{1, 99, 900, 64 << 10, 1 << 20, 3} {
		received += chunk
		percent := Percent(received, 2<<20)
		this.So(percent, should.BeGreaterThanOrEqualTo, previous)
		this.So(percent, should.BeBetweenOrEqual, 0, 100)
		previous = percent
	}
}

func (this *ProgressFixture) TestHumanFileSize() {
	this.So(HumanFileSize(0), should.Equal, "0 B")
	this.So(HumanFileSize(512), should.Equal, "512 B")
	this.So(HumanFileSize(1024), should.Equal, "1 KB")
	this.So(HumanFileSize(1536), should.Equal, "1.5 KB")
	this.So(HumanFileSize(1048576), should.Equal, "1 MB")
}

package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackend(t *testing.T) {
	Convey("Given the filesystem backend", t, func() {
		Convey("It defaults to the os filesystem", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("It can be switched to memory", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestReadIfExists(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		SetMemMapFs()

		Convey("A missing file reports ok=false without error", func() {
			data, ok, err := ReadIfExists("/nope.json")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(data, ShouldBeNil)
		})

		Convey("An existing file is returned", func() {
			So(API().WriteFile("/catalog.json", []byte("{}"), 0o644), ShouldBeNil)

			data, ok, err := ReadIfExists("/catalog.json")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(string(data), ShouldEqual, "{}")
		})
	})
}

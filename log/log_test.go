package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/where"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		defer viper.Reset()

		Convey("Disabled logging creates nothing", func() {
			viper.Set(key.LogsWrite, false)
			So(Setup(), ShouldBeNil)
			So(Enabled(), ShouldBeFalse)

			entry := WithFields(logrus.Fields{"source": "a"})
			So(entry.Data["source"], ShouldEqual, "a")
		})

		Convey("Enabled logging writes a dated file", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "debug")
			So(Setup(), ShouldBeNil)
			So(Enabled(), ShouldBeTrue)
			So(logrus.GetLevel(), ShouldEqual, logrus.DebugLevel)

			Info("hello")
			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			So(lo.Must(filesystem.API().Exists(path)), ShouldBeTrue)

			enabled = false
		})
	})
}

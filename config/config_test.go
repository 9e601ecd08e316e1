package config

import (
	"os"
	"testing"

	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/key"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	Convey("Given an empty in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		viper.Reset()

		Convey("Setup succeeds without a config file", func() {
			So(Setup(), ShouldBeNil)

			Convey("And every default is visible through viper", func() {
				for name := range Default {
					So(viper.IsSet(name), ShouldBeTrue)
				}
				So(viper.GetInt(key.CacheTTL), ShouldEqual, 24)
				So(viper.GetString(key.ResolverStrategy), ShouldEqual, "exact")
			})
		})

		Convey("Environment variables override defaults", func() {
			lo.Must0(os.Setenv("KATALOG_CACHE_TTL", "6"))
			defer os.Unsetenv("KATALOG_CACHE_TTL")

			So(Setup(), ShouldBeNil)
			So(viper.GetInt(key.CacheTTL), ShouldEqual, 6)
		})

		Convey("EnvKeyReplacer converts dots to underscores", func() {
			So(EnvKeyReplacer.Replace("resolver.strategy"), ShouldEqual, "resolver_strategy")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.ResolverThreshold]

		Convey("Its env name carries the application prefix", func() {
			So(field.Env(), ShouldEqual, "KATALOG_RESOLVER_THRESHOLD")
		})

		Convey("Its type is derived from the default", func() {
			So(field.TypeName(), ShouldEqual, "float")
			queries := Default[key.WarmerQueries]
			So(queries.TypeName(), ShouldEqual, "[]string")
		})
	})
}

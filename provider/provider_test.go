package provider

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/where"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fake struct {
	name   string
	closed bool
}

func (f *fake) Name() string { return f.name }
func (f *fake) ID() string   { return f.name + " fake" }
func (f *fake) Search(context.Context, string) ([]*content.Raw, error) {
	return nil, nil
}
func (f *fake) Close() { f.closed = true }

func install(name, body string) {
	So(filesystem.API().WriteFile(filepath.Join(where.Sources(), name), []byte(body), 0o644), ShouldBeNil)
}

func TestDiscovery(t *testing.T) {
	Convey("Given sources installed on disk", t, func() {
		install("zeta.lua", `function SearchContent(q) return {} end`)
		install("alpha.json", `{"items": []}`)
		install("headless.lua", `local h = require("headless")
function SearchContent(q) return {} end`)
		install("notes.txt", "ignored")

		Convey("Lua scripts and static catalogs are discovered in name order", func() {
			So(Names(), ShouldResemble, []string{"alpha", "headless", "zeta"})

			alpha := Get("alpha").MustGet()
			So(alpha.Kind, ShouldEqual, Static)
			So(Get("zeta").MustGet().Kind, ShouldEqual, Lua)
			So(Get("headless").MustGet().UsesHeadless, ShouldBeTrue)
			So(Get("zeta").MustGet().UsesHeadless, ShouldBeFalse)
		})

		Convey("When trying to get an invalid provider", func() {
			So(Get("kek").IsPresent(), ShouldBeFalse)
		})

		Convey("The closest name is suggested", func() {
			So(Closest("zetta").MustGet(), ShouldEqual, "zeta")
		})

		Convey("Load builds a registry in the requested order", func() {
			registry, err := Load([]string{"zeta", "alpha"})
			So(err, ShouldBeNil)
			defer registry.Close()
			So(registry.Names(), ShouldResemble, []string{"zeta", "alpha"})
		})

		Convey("Load rejects unknown names with a suggestion", func() {
			_, err := Load([]string{"alpah"})
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "alpha")
		})
	})
}

func TestLoadSkipsBrokenSources(t *testing.T) {
	Convey("Given a broken catalog and a name clash among installed sources", t, func() {
		install("broken.json", `{"name": "broken", "items": [`)
		install("dizi.lua", `function SearchContent(q) return {} end`)
		install("good.json", `{"items": []}`)
		install("other.json", `{"name": "dizi", "items": []}`)

		Reset(func() {
			for _, name := range []string{"broken.json", "dizi.lua", "good.json", "other.json"} {
				_ = filesystem.API().Remove(filepath.Join(where.Sources(), name))
			}
		})

		Convey("The remaining sources still load", func() {
			registry, err := Load([]string{"broken", "dizi", "good", "other"})
			So(err, ShouldBeNil)
			defer registry.Close()
			So(registry.Names(), ShouldResemble, []string{"dizi", "good"})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		registry := NewRegistry()

		Convey("Sources keep registration order", func() {
			So(registry.Register(&fake{name: "b"}), ShouldBeNil)
			So(registry.Register(&fake{name: "a"}), ShouldBeNil)
			So(registry.Names(), ShouldResemble, []string{"b", "a"})
			So(registry.Len(), ShouldEqual, 2)
		})

		Convey("Names are unique", func() {
			So(registry.Register(&fake{name: "a"}), ShouldBeNil)
			So(registry.Register(&fake{name: "a"}), ShouldNotBeNil)
			So(registry.Len(), ShouldEqual, 1)
		})

		Convey("Unregister closes and removes the source", func() {
			src := &fake{name: "a"}
			So(registry.Register(src), ShouldBeNil)
			snapshot := registry.All()

			So(registry.Unregister("a"), ShouldBeNil)
			So(src.closed, ShouldBeTrue)
			So(registry.Get("a").IsPresent(), ShouldBeFalse)
			So(snapshot, ShouldHaveLength, 1)

			So(errors.Is(registry.Unregister("a"), ErrNotFound), ShouldBeTrue)
		})

		Convey("Close releases every source", func() {
			a, b := &fake{name: "a"}, &fake{name: "b"}
			registry = NewRegistry(a, b)
			registry.Close()
			So(a.closed && b.closed, ShouldBeTrue)
			So(registry.Len(), ShouldEqual, 0)
		})
	})
}

package custom

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/source"
	. "github.com/smartystreets/goconvey/convey"
)

const script = `
function SearchContent(query)
	return {
		{ title = query .. " (2008) HD", url = "https://lua.test/1", type = "series", year = 2008 },
		{ title = "", url = "https://lua.test/broken" },
	}
end

function ContentDetails(url)
	return { description = "from " .. url, rating = 9.5, tags = { "Drama" } }
end
`

const searchOnly = `
function SearchContent(query)
	return {}
end
`

// sharedResults reuses one global table across calls.
const sharedResults = `
results = {}

function SearchContent(query)
	for i = #results, 1, -1 do results[i] = nil end
	for i = 1, 3 do
		results[i] = { title = query .. " " .. i, url = "https://lua.test/" .. i }
	end
	return results
end
`

func write(name, body string) string {
	path := filepath.Join("/sources", name)
	So(filesystem.API().WriteFile(path, []byte(body), 0o644), ShouldBeNil)
	return path
}

func TestLuaSource(t *testing.T) {
	Convey("Given Lua scripts on disk", t, func() {
		filesystem.SetMemMapFs()
		ctx := context.Background()

		Convey("A script with both functions searches and loads details", func() {
			src, err := LoadSource(write("demo.lua", script))
			So(err, ShouldBeNil)
			defer src.(source.Closer).Close()

			So(src.Name(), ShouldEqual, "demo")
			So(src.ID(), ShouldEqual, "demo lua")

			results, err := src.Search(ctx, "Breaking Bad")
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)
			So(results[0].Title, ShouldEqual, "Breaking Bad (2008) HD")
			So(results[0].SourceName, ShouldEqual, "demo")

			details, err := source.Details(ctx, src, "https://lua.test/1")
			So(err, ShouldBeNil)
			So(details.Description, ShouldEqual, "from https://lua.test/1")
			So(*details.Rating, ShouldEqual, 9.5)
		})

		Convey("Concurrent searches each read their own results from a shared table", func() {
			src, err := LoadSource(write("shared.lua", sharedResults))
			So(err, ShouldBeNil)
			defer src.(source.Closer).Close()

			var (
				wg         sync.WaitGroup
				mismatches atomic.Int64
			)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					query := fmt.Sprintf("query %d", g)
					for n := 0; n < 50; n++ {
						results, err := src.Search(ctx, query)
						if err != nil || len(results) != 3 {
							mismatches.Add(1)
							continue
						}
						for _, raw := range results {
							if !strings.HasPrefix(raw.Title, query+" ") {
								mismatches.Add(1)
							}
						}
					}
				}()
			}
			wg.Wait()

			So(mismatches.Load(), ShouldEqual, 0)
		})

		Convey("Details are unsupported when the script does not define them", func() {
			src, err := LoadSource(write("plain.lua", searchOnly))
			So(err, ShouldBeNil)

			_, err = source.Details(ctx, src, "https://lua.test/1")
			So(err, ShouldEqual, source.ErrNotSupported)
		})

		Convey("A script without SearchContent is rejected", func() {
			_, err := LoadSource(write("empty.lua", "local x = 1"))
			So(err, ShouldNotBeNil)
		})

		Convey("A script with a syntax error is rejected", func() {
			_, err := LoadSource(write("broken.lua", "function ("))
			So(err, ShouldNotBeNil)
		})

		Reset(filesystem.SetOsFs)
	})
}

package title

import (
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

var samples = []string{
	"",
	"   ",
	"Breaking Bad (2008) HD Türkçe Dublaj",
	"Breaking Bad 2008 Full HD",
	"BREAKING BAD",
	"Kırmızı Oda 1. Sezon",
	"İstanbul Kırmızısı",
	"Amélie (2001) 1080p",
	"The Lord of the Rings: The Return of the King",
	"Çukur - Bölüm 12 İzle",
	"!!!",
	"x y z",
	"Pokémon: Mewtwo Strikes Back — Evolution 4K UHD",
	"Game of Thrones S01E01",
}

func TestNormalize(t *testing.T) {
	Convey("Given titles from different sources", t, func() {
		Convey("Stop words, punctuation and short tokens are dropped", func() {
			So(Normalize("Breaking Bad (2008) HD Türkçe Dublaj"), ShouldEqual, "breaking bad 2008")
			So(Normalize("The Lord of the Rings: The Return of the King"), ShouldEqual, "lord rings return king")
			So(Normalize("x y z"), ShouldEqual, "")
		})

		Convey("Turkish casing is applied and dotless i is folded", func() {
			So(Normalize("BREAKING BAD"), ShouldEqual, Normalize("Breaking Bad"))
			So(Normalize("Kırmızı Oda 1. Sezon"), ShouldEqual, "kirmizi oda")
			So(Normalize("İstanbul"), ShouldEqual, "istanbul")
			So(Normalize("Çukur Şahin Öykü Ğ"), ShouldEqual, "çukur şahin öykü")
		})

		Convey("Letters outside the Turkish alphabet become separators", func() {
			So(Normalize("Amélie"), ShouldEqual, "am lie")
			So(Normalize("Pokémon"), ShouldEqual, "pok mon")
			So(Normalize("Poke\u0301mon"), ShouldEqual, "pok mon")
		})

		Convey("Normalization is idempotent", func() {
			for _, s := range samples {
				once := Normalize(s)
				So(Normalize(once), ShouldEqual, once)
			}
		})

		Convey("Normalization never introduces tokens", func() {
			for _, s := range samples {
				source := map[string]bool{}
				for _, token := range Tokens(s) {
					source[token] = true
				}
				for _, token := range Tokens(Normalize(s)) {
					So(source[token], ShouldBeTrue)
				}
			}
		})

		Convey("Empty and punctuation-only titles normalize to nothing", func() {
			So(Normalize(""), ShouldEqual, "")
			So(Normalize("!!!"), ShouldEqual, "")
		})
	})
}

func TestSimilarity(t *testing.T) {
	Convey("Given pairs of titles", t, func() {
		Convey("A non-empty title is fully similar to itself", func() {
			for _, s := range samples {
				if s == "" {
					continue
				}
				So(Similarity(s, s), ShouldEqual, 1.0)
			}
		})

		Convey("Similarity is symmetric", func() {
			for _, a := range samples {
				for _, b := range samples {
					So(Similarity(a, b), ShouldEqual, Similarity(b, a))
				}
			}
		})

		Convey("Two empty titles are identical", func() {
			So(Similarity("", "!!!"), ShouldEqual, 1.0)
		})

		Convey("An empty title shares nothing with a non-empty one", func() {
			So(Similarity("", "Breaking Bad"), ShouldEqual, 0.0)
		})

		Convey("Jaccard index is used for partial overlap", func() {
			So(Similarity("Breaking Bad", "Breaking Bad 2008"), ShouldAlmostEqual, 2.0/3.0)
			So(Similarity("Breaking Bad", "Better Call Saul"), ShouldEqual, 0.0)
		})

		Convey("Results stay within [0, 1]", func() {
			for _, a := range samples {
				for _, b := range samples {
					s := Similarity(a, b)
					So(s, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})

		Convey("IsMatch applies the threshold inclusively", func() {
			So(IsMatch("Breaking Bad", "Breaking Bad 2008", 2.0/3.0), ShouldBeTrue)
			So(IsMatch("Breaking Bad", "Breaking Bad 2008", DefaultThreshold), ShouldBeFalse)
			So(IsMatch("Breaking Bad HD", "BREAKING BAD", DefaultThreshold), ShouldBeTrue)
		})
	})
}

func TestGenerateID(t *testing.T) {
	Convey("Given any title", t, func() {
		alphabet := regexp.MustCompile(`^[a-z0-9_]*$`)

		Convey("The id only contains [a-z0-9_]", func() {
			for _, s := range samples {
				So(alphabet.MatchString(GenerateID(s)), ShouldBeTrue)
			}
		})

		Convey("The id joins normalized tokens with underscores", func() {
			So(GenerateID("Breaking Bad (2008) HD Türkçe Dublaj"), ShouldEqual, "breaking_bad_2008")
			So(GenerateID("Breaking Bad 2008 Full HD"), ShouldEqual, "breaking_bad_2008")
		})

		Convey("The id is stable", func() {
			So(GenerateID("Amélie (2001)"), ShouldEqual, GenerateID("Amélie (2001)"))
		})

		Convey("Concurrent callers get the same ids", func() {
			want := make([]string, len(samples))
			for i, s := range samples {
				want[i] = GenerateID(s)
			}

			var (
				wg         sync.WaitGroup
				mismatches atomic.Int64
			)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for n := 0; n < 2000; n++ {
						i := n % len(samples)
						if GenerateID(samples[i]) != want[i] {
							mismatches.Add(1)
						}
					}
				}()
			}
			wg.Wait()

			So(mismatches.Load(), ShouldEqual, 0)
		})

		Convey("Titles without usable tokens give the empty id", func() {
			So(GenerateID(""), ShouldEqual, "")
			So(GenerateID("HD 1 a"), ShouldEqual, "")
		})
	})
}

func TestMarkers(t *testing.T) {
	Convey("Given titles carrying year and quality markers", t, func() {
		Convey("The first year in range is extracted", func() {
			year, ok := ExtractYear("Breaking Bad (2008) 2013")
			So(ok, ShouldBeTrue)
			So(year, ShouldEqual, 2008)

			_, ok = ExtractYear("Blade Runner 2049 2160p")
			So(ok, ShouldBeTrue)

			_, ok = ExtractYear("Space 1800 and 2100")
			So(ok, ShouldBeFalse)
		})

		Convey("The first quality marker is extracted uppercased", func() {
			quality, ok := ExtractQuality("Dune 1080p web")
			So(ok, ShouldBeTrue)
			So(quality, ShouldEqual, "1080P")

			quality, _ = ExtractQuality("Dune full hd")
			So(quality, ShouldEqual, "HD")

			_, ok = ExtractQuality("Shadow and Bone")
			So(ok, ShouldBeFalse)
		})

		Convey("Markers are stripped from display titles", func() {
			So(CleanTitleFromYear("Breaking Bad (2008) HD"), ShouldEqual, "Breaking Bad HD")
			So(CleanTitleFromQuality("Breaking Bad 4K UHD"), ShouldEqual, "Breaking Bad")
			So(Clean("Breaking Bad (2008) HD Türkçe Dublaj"), ShouldEqual, "Breaking Bad Türkçe Dublaj")
			So(Clean("Breaking Bad 2008 Full HD"), ShouldEqual, "Breaking Bad Full")
		})
	})
}

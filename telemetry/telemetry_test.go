package telemetry

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Without an OTLP endpoint", t, func() {
		t.Setenv(EnvEndpoint, "")

		shutdown, err := Init(context.Background(), "katalog-test")
		So(err, ShouldBeNil)

		Convey("Tracing is a noop that shuts down cleanly", func() {
			So(shutdown(context.Background()), ShouldBeNil)
			So(Tracer("test"), ShouldNotBeNil)
		})
	})
}

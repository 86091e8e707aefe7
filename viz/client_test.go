package viz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"ccsched/viz/fastview"
)

func TestClientPublishesUpdates(t *testing.T) {
	Convey("Given a server pushing one batch of updates over a websocket", t, func() {
		updates := make(chan []fastview.EleUpdate)
		go func() {
			defer close(updates)
			// publish() throttles anything arriving within pubResolution of
			// its loop start, so give it room to clear that window first.
			time.Sleep(pubResolution * 2)
			updates <- []fastview.EleUpdate{{EleId: "m1-c1-rect", Ops: []fastview.Op{{Key: "fill", Value: "lightyellow"}}}}
		}()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws, err := upgrader.Upgrade(w, r, nil)
			So(err, ShouldBeNil)
			defer ws.Close()

			cli := newClient(updates, ws)
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			_ = cli.sync(ctx)
		})
		srv := httptest.NewServer(handler)
		defer srv.Close()

		wsURL := "ws" + srv.URL[len("http"):] + "/"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		Convey("When the client reads the published frame", func() {
			var got []fastview.EleUpdate
			err := conn.ReadJSON(&got)

			Convey("Then it matches what was sent", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got[0].EleId, ShouldEqual, "m1-c1-rect")
			})
		})
	})
}

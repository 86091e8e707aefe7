// Package viz is a Gantt/timeline visualization server: a read-only
// consumer of a finished scheduling run that pushes per-machine allocation
// timelines to a browser over a websocket. It never touches kernel state;
// the scheduler and batchrun packages run headless without it.
package viz

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"ccsched/csstate"
	"ccsched/instance"
	"ccsched/scheduler"
	"ccsched/viz/root"
	"ccsched/viz/timeline"
)

// AllocationSource exposes a finished run's state in the read-only shape
// the visualization server needs, without coupling it to any one
// producer. scheduler.Result does not implement this directly (it carries
// no *instance.Instance of its own); ResultSource below is the concrete
// adapter used to satisfy it from a (*instance.Instance, *scheduler.Result)
// pair.
type AllocationSource interface {
	Instance() *instance.Instance
	MachineStates() csstate.MachineStates
}

// ResultSource adapts a scheduler.Result plus the instance it was run
// against into an AllocationSource.
type ResultSource struct {
	Inst   *instance.Instance
	Result *scheduler.Result
}

func (rs ResultSource) Instance() *instance.Instance         { return rs.Inst }
func (rs ResultSource) MachineStates() csstate.MachineStates { return rs.Result.Machines }

// toSnapshot converts an AllocationSource into the root view's Snapshot
// data model by running the timeline conversion over its current machine
// states.
func toSnapshot(src AllocationSource) root.Snapshot {
	return root.Snapshot{Lanes: timeline.Convert(src.Instance(), src.MachineStates())}
}

var upgrader = websocket.Upgrader{}

const (
	writeWait        = 1 * time.Second
	closeGracePeriod = 10 * time.Second
)

// Server serves the timeline page and pushes live allocation updates to it.
type Server struct {
	addr       string
	lastUpdate root.Snapshot
	rootView   *root.RootView
}

// NewServer builds the timeline view and the server that serves it.
// snapshots delivers successive AllocationSource snapshots (e.g. from
// batchrun workers reporting progress); ctx cancellation tears down all
// downstream channels.
func NewServer(
	ctx context.Context,
	addr string,
	initial AllocationSource,
	snapshots <-chan AllocationSource,
) (*Server, error) {
	t := template.New("index")
	rv := root.NewRootView(ctx, toSnapshot(initial), toSnapshots(ctx.Done(), snapshots))
	if _, err := rv.Parse(t); err != nil {
		return nil, err
	}

	return &Server{
		addr:       addr,
		lastUpdate: toSnapshot(initial),
		rootView:   rv,
	}, nil
}

func toSnapshots(done <-chan struct{}, in <-chan AllocationSource) <-chan root.Snapshot {
	out := make(chan root.Snapshot)
	go func() {
		defer close(out)
		for src := range in {
			select {
			case out <- toSnapshot(src):
			case <-done:
				return
			}
		}
	}()
	return out
}

// Serve blocks, serving the index page and the websocket endpoint.
func (s *Server) Serve() error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)

	if err := http.ListenAndServe(s.addr, r); err != nil {
		return fmt.Errorf("viz: serve: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := s.rootView.Template().Execute(w, s.lastUpdate); err != nil {
		_, _ = w.Write([]byte(err.Error()))
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("viz: upgrade:", err)
		return
	}
	defer closeWebsocket(ws)

	cli := newClient(s.rootView.Updates(), ws)
	if err := cli.sync(r.Context()); err != nil {
		log.Println("viz: client disconnected:", err)
	}
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	_ = ws.Close()
}

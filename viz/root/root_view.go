// Package root assembles the page-level view: it wires the timeline view
// builder, fans in its element-update channel, and owns the page template
// with its websocket bootstrap script, the same structure as the
// teacher's page-assembly layer.
package root

import (
	"context"
	"html/template"
	"log"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"ccsched/viz/fastview"
	"ccsched/viz/timeline"
)

// Snapshot is the data model the root view's builder consumes: a read-only
// source of machine-lane cells at a point in time.
type Snapshot struct {
	Lanes [][]timeline.Cell
}

// RootView is the container page for all view components: their wiring,
// their fanned-in update channel, and the top-level template.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
	tmpl    *template.Template
}

// NewRootView builds the timeline view over updates and fans its
// element-update channel into the page's single update stream. initial is
// not read here; the page's first render comes from executing Template.
func NewRootView(
	ctx context.Context,
	initial Snapshot,
	updates <-chan Snapshot,
) *RootView {
	views, err := fastview.NewViewBuilder[Snapshot, [][]timeline.Cell]().
		WithContext(ctx).
		WithModel(updates, func(s Snapshot) [][]timeline.Cell { return s.Lanes }).
		WithView(func(done <-chan struct{}, cells <-chan [][]timeline.Cell) fastview.ViewComponent {
			return timeline.New(done, cells)
		}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}
}

// Updates returns the page's single fanned-in element-update channel.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Template returns the parsed page template, ready to Execute against a
// Snapshot.
func (rv *RootView) Template() *template.Template {
	return rv.tmpl
}

// Parse builds the page template: the shared func-map every view depends
// on, the websocket bootstrap script, and each view's own fragment nested
// inside the body.
func (rv *RootView) Parse(parent *template.Template) (name string, err error) {
	t := parent.Funcs(template.FuncMap{
		"add":  func(i, j int) int { return i + j },
		"sub":  func(i, j int) int { return i - j },
		"mult": func(i, j int) int { return i * j },
		"div":  func(i, j int) int { return i / j },
	})

	var body string
	for _, vc := range rv.views {
		tname, err := vc.Parse(t)
		if err != nil {
			return "", err
		}
		body += `{{ template "` + tname + `" .Lanes }}`
	}

	name = "mainpage"
	index := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://localhost:8080/ws");
				ws.onopen = function () { console.log("timeline socket opened") };
				ws.onerror = function (event) { console.log("timeline socket error: ", event) };
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data);
					for (const update of items) {
						const ele = document.getElementById(update.EleId);
						if (!ele) { continue; }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				}
			</script>
		</head>
		<body>` + body + `</body>
	</html>
	{{ end }}
	`
	_, err = t.Parse(index)
	rv.tmpl = t
	return name, err
}

// fanIn aggregates every view's element-update channel into one, batching
// bursts so redundant updates to the same element within a window collapse
// to the latest value.
func fanIn(done <-chan struct{}, views []fastview.ViewComponent) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, v := range views {
		inputs[i] = v.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), time.Millisecond*20)
}

func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, u := range updates {
				data[u.EleId] = u
			}
			if time.Since(last) > rate && len(updates) > 0 {
				select {
				case output <- slicedVals(data):
					data = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func slicedVals[K comparable, V any](m map[K]V) (out []V) {
	for _, v := range m {
		out = append(out, v)
	}
	return
}

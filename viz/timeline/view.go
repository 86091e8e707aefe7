package timeline

import (
	"fmt"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"

	"ccsched/viz/fastview"
)

// View renders one SVG Gantt chart: one horizontal lane per machine, one
// rect per allocation.
type View struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// New builds a timeline view from a channel of lane updates, closing its
// own update channel when done fires or lanes closes.
func New(done <-chan struct{}, lanes <-chan [][]Cell) fastview.ViewComponent {
	v := &View{id: "timeline"}

	updates := make(chan []fastview.EleUpdate)
	go func() {
		defer close(updates)
		for next := range channerics.OrDone(done, lanes) {
			ops := v.toUpdates(next)
			select {
			case updates <- ops:
			case <-done:
				return
			}
		}
	}()
	v.updates = updates

	return v
}

func (v *View) Updates() <-chan []fastview.EleUpdate {
	return v.updates
}

// Parse adds the timeline's SVG fragment to parent and returns its name.
func (v *View) Parse(parent *template.Template) (string, error) {
	name := v.id
	body := `
	{{ define "` + name + `" }}
	{{ $lane_height := 40 }}
	{{ $px_per_second := 0.02 }}
	<svg id="` + name + `" width="2000px" height="{{ mult (len .) $lane_height }}px">
		{{ range $li, $lane := . }}
			{{ range $cell := $lane }}
			<rect id="{{ $cell.EleID }}-rect"
				x="{{ mult $cell.Start $px_per_second }}"
				y="{{ mult $li $lane_height }}"
				width="{{ mult (sub $cell.End $cell.Start) $px_per_second }}"
				height="{{ $lane_height }}"
				fill="{{ $cell.Fill }}"
				stroke="black" stroke-width="1"/>
			<text id="{{ $cell.EleID }}-label"
				x="{{ mult $cell.Start $px_per_second }}"
				y="{{ add (mult $li $lane_height) 20 }}">{{ $cell.Charge }}</text>
			{{ end }}
		{{ end }}
	</svg>
	{{ end }}
	`
	_, err := parent.Parse(body)
	return name, err
}

func (v *View) toUpdates(lanes [][]Cell) (ops []fastview.EleUpdate) {
	for _, lane := range lanes {
		for _, cell := range lane {
			ops = append(ops, fastview.EleUpdate{
				EleId: cell.EleID() + "-rect",
				Ops: []fastview.Op{
					{Key: "fill", Value: cell.Fill},
				},
			})
			ops = append(ops, fastview.EleUpdate{
				EleId: cell.EleID() + "-label",
				Ops: []fastview.Op{
					{Key: "textContent", Value: fmt.Sprintf("%d", cell.Charge)},
				},
			})
		}
	}
	return
}

// Package fastview implements a small builder pattern for server-pushed
// SVG views: given an input data model, apply a transformation to a
// view-model, and multiplex that view-model to one or more views, each of
// which emits element-update batches over its own channel.
package fastview

import (
	"context"
	"errors"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"
)

// EleUpdate is an element identifier and a set of operations to apply to
// its attributes/content.
type EleUpdate struct {
	// EleId is the id by which to find the element.
	EleId string
	// Ops's keys are attribute keys or "textContent"; values are the
	// strings those attributes/content are set to.
	Ops []Op
}

// Op is a key and value, e.g. an SVG attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent implements a server-side view: Parse adds it (and
// anything it depends on) to a parent template, and Updates exposes the
// channel of element-update batches it emits as new data arrives.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	Parse(*template.Template) (name string, err error)
}

// ViewBuilderFunc builds a view from a done channel (for cleanup) and an
// input channel of view-models.
type ViewBuilderFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// ViewBuilder assembles one or more views sharing a common view-model
// derived from a single data-model source.
type ViewBuilder[DataModel any, ViewModel any] struct {
	source      <-chan DataModel
	viewModelFn func(DataModel) ViewModel
	builderFns  []ViewBuilderFunc[ViewModel]
	done        <-chan struct{}
}

// NewViewBuilder returns an empty builder for the given data/view-model pair.
func NewViewBuilder[DataModel any, ViewModel any]() *ViewBuilder[DataModel, ViewModel] {
	return &ViewBuilder[DataModel, ViewModel]{}
}

// WithModel sets the input data channel and the conversion function to
// the shared view-model type.
func (vb *ViewBuilder[DataModel, ViewModel]) WithModel(
	input <-chan DataModel,
	convert func(DataModel) ViewModel,
) *ViewBuilder[DataModel, ViewModel] {
	vb.source = input
	vb.viewModelFn = convert
	return vb
}

// WithView adds one view to build. Views are returned from Build in the
// order they were added.
func (vb *ViewBuilder[DataModel, ViewModel]) WithView(
	builderFn ViewBuilderFunc[ViewModel],
) *ViewBuilder[DataModel, ViewModel] {
	vb.builderFns = append(vb.builderFns, builderFn)
	return vb
}

// WithContext ensures all downstream channels close when ctx is cancelled.
func (vb *ViewBuilder[DataModel, ViewModel]) WithContext(
	ctx context.Context,
) *ViewBuilder[DataModel, ViewModel] {
	vb.done = ctx.Done()
	return vb
}

// ErrNoViews is returned when Build is called before any WithView call.
var ErrNoViews error = errors.New("no views to build: WithView must be called")

// ErrNoModel is returned when Build is called before WithModel.
var ErrNoModel error = errors.New("no model specified: WithModel must be called")

// Build wires the shared view-model channel to every registered builder
// and constructs the views.
func (vb *ViewBuilder[DataModel, ViewModel]) Build() (views []ViewComponent, err error) {
	if len(vb.builderFns) == 0 {
		return nil, ErrNoViews
	}
	if vb.viewModelFn == nil {
		return nil, ErrNoModel
	}

	vmChan := channerics.Convert(vb.done, vb.source, vb.viewModelFn)
	vmChans := channerics.Broadcast(vb.done, vmChan, len(vb.builderFns))
	for i, build := range vb.builderFns {
		views = append(views, build(vb.done, vmChans[i]))
	}
	return views, nil
}

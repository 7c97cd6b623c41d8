package pipeline

import (
	"jsonmend/pkg/core/clean"
	"jsonmend/pkg/core/normalize"
	"jsonmend/pkg/core/repair"
	"jsonmend/pkg/core/structural"
)

// Layer is the uniform shape every repair stage exposes, letting the
// orchestrator hold a set of interchangeable stages behind one contract.
type Layer interface {
	Name() string
	Priority() int
	Supports(input string, ctx *repair.Context) bool
	Process(input string, ctx *repair.Context) (string, repair.Outcome)
}

// orderedLayers is the static registry the orchestrator folds over, in
// strict A->H order (content cleaning, then structural repair, then
// syntax normalization — validation is handled separately since it
// produces a value, not text).
var orderedLayers = []Layer{
	contentCleaningLayer{},
	structuralRepairLayer{},
	syntaxNormalizationLayer{},
}

type contentCleaningLayer struct{}

func (contentCleaningLayer) Name() string  { return string(repair.LayerContentCleaning) }
func (contentCleaningLayer) Priority() int { return 1 }
func (contentCleaningLayer) Supports(string, *repair.Context) bool { return true }
func (contentCleaningLayer) Process(input string, ctx *repair.Context) (string, repair.Outcome) {
	return clean.Clean(input, ctx)
}

type structuralRepairLayer struct{}

func (structuralRepairLayer) Name() string  { return string(repair.LayerStructuralRepair) }
func (structuralRepairLayer) Priority() int { return 2 }
func (structuralRepairLayer) Supports(input string, ctx *repair.Context) bool {
	return !ctx.Options.StrictMode
}
func (structuralRepairLayer) Process(input string, ctx *repair.Context) (string, repair.Outcome) {
	return structural.Repair(input, ctx)
}

type syntaxNormalizationLayer struct{}

func (syntaxNormalizationLayer) Name() string  { return string(repair.LayerSyntaxNormalization) }
func (syntaxNormalizationLayer) Priority() int { return 3 }
func (syntaxNormalizationLayer) Supports(input string, ctx *repair.Context) bool {
	return !ctx.Options.StrictMode
}
func (syntaxNormalizationLayer) Process(input string, ctx *repair.Context) (string, repair.Outcome) {
	return normalize.Normalize(input, ctx)
}

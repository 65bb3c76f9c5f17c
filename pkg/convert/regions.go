package convert

import "github.com/goliatone/go-modeladmin/pkg/form"

// RegionProvider supplies the choice set of region fields.
type RegionProvider interface {
	Regions() []form.Choice
}

// EmptyRegions is the provider used when none is configured.
type EmptyRegions struct{}

func (EmptyRegions) Regions() []form.Choice { return nil }

// StaticRegions serves a fixed choice list.
type StaticRegions []form.Choice

func (s StaticRegions) Regions() []form.Choice {
	return append([]form.Choice(nil), s...)
}

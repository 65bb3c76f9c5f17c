// Package regions loads the embedded US state list served to region fields.
package regions

import (
	"embed"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modeladmin/pkg/convert"
	"github.com/goliatone/go-modeladmin/pkg/form"
)

//go:embed data/us_states.yaml
var dataFS embed.FS

const defaultListPath = "data/us_states.yaml"

// Region is one entry of a region list.
type Region struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type regionFile struct {
	Regions []Region `yaml:"regions"`
}

var (
	defaultOnce    sync.Once
	defaultRegions []Region
	defaultErr     error
)

// USStates returns the embedded US state and territory list sorted by name.
func USStates() ([]Region, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		regions, err := Load(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultRegions = regions
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]Region{}, defaultRegions...), nil
}

// Load decodes a YAML region list. Entries without a code are dropped and
// duplicate codes keep their first occurrence.
func Load(r io.Reader) ([]Region, error) {
	if r == nil {
		return nil, errors.New("regions: missing reader")
	}

	var file regionFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "regions: decode")
	}

	out := make([]Region, 0, len(file.Regions))
	seen := map[string]struct{}{}
	for _, region := range file.Regions {
		code := strings.ToUpper(strings.TrimSpace(region.Code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		name := strings.TrimSpace(region.Name)
		if name == "" {
			name = code
		}
		out = append(out, Region{Code: code, Name: name})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Choices converts regions into select choices keyed by code.
func Choices(regions []Region) []form.Choice {
	out := make([]form.Choice, 0, len(regions))
	for _, region := range regions {
		out = append(out, form.Choice{Value: region.Code, Label: region.Name})
	}
	return out
}

// Provider returns a region provider over the embedded list. A list that
// fails to load degrades to an empty provider.
func Provider() convert.RegionProvider {
	regions, err := USStates()
	if err != nil {
		return convert.EmptyRegions{}
	}
	return convert.StaticRegions(Choices(regions))
}

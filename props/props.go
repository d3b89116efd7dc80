// Package props loads the material and condition JSON document and derives
// the per-element property atlas the view-factor kernels read from.
package props

import (
	"encoding/json"
	"log"
	"sort"

	"github.com/pkg/errors"
)

// ErrBadProperties is returned when the properties JSON is malformed or
// references an out-of-range element index.
var ErrBadProperties = errors.New("props: bad properties")

// Material mirrors the "materials.properties.<name>" record. AlphaIR is the
// one field the core consumes. Extra is not filled by this package; the
// record's other fields reach the rewritten output JSON because Rewrite
// copies the materials section unchanged.
type Material struct {
	AlphaIR float64         `json:"alpha_ir"`
	Extra   json.RawMessage `json:"-"`
}

// Condition mirrors the "conditions.properties.<name>" record.
type Condition struct {
	TwoSidesRadiation bool            `json:"two_sides_radiation"`
	Extra             json.RawMessage `json:"-"`
}

// Globals holds the run-control knobs under "global_properties", plus the
// orbit-derived fields Rewrite appends after the orbit parser runs.
type Globals struct {
	OrbitDivisions              int  `json:"orbit_divisions"`
	ElementRayAmount            int  `json:"element_ray_amount"`
	ElementMaxReflectionsAmount int  `json:"element_max_reflections_amount"`
	EarthRayAmount              int  `json:"earth_ray_amount"`
	InternalEmission            bool `json:"internal_emission"`
	// PenumbraFraction is the penumbra edge width p in [0,1] used by the
	// Earth-albedo kernel (SPEC_FULL.md §4.3); not in spec.md's JSON
	// schema, added here with a 0.5 default when absent (DESIGN.md).
	PenumbraFraction *float64 `json:"penumbra_fraction,omitempty"`

	BetaAngle     *float64 `json:"beta_angle,omitempty"`
	OrbitalPeriod *float64 `json:"orbital_period,omitempty"`
	EclipseStart  *float64 `json:"eclipse_start,omitempty"`
	EclipseEnd    *float64 `json:"eclipse_end,omitempty"`

	Extra json.RawMessage `json:"-"`
}

type namedGroup struct {
	Properties map[string]json.RawMessage `json:"properties"`
	Elements   map[string][]int           `json:"elements"`
}

// Document is the full properties.json payload, preserved verbatim except
// for the four orbit-derived Globals fields merged in by Rewrite.
type Document struct {
	raw map[string]json.RawMessage

	GlobalProperties Globals
	materials        namedGroup
	conditions       namedGroup
	hasConditions    bool
}

// Penumbra returns the configured penumbra fraction, defaulting to 0.5
// (a moderate soft transition) when the properties file does not set one.
func (g *Globals) Penumbra() float64 {
	if g.PenumbraFraction == nil {
		return 0.5
	}
	return *g.PenumbraFraction
}

// Atlas holds the derived per-element arrays of length NElements.
type Atlas struct {
	MaterialIndex []int     // index into the material names in sorted order, or -1 if unassigned
	AlphaIR       []float64
	TwoSides      []bool
}

// Load parses the properties JSON document at path.
func Load(path string) (*Document, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrBadProperties, "cannot open properties file %s: %v", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrapf(ErrBadProperties, "cannot unmarshal properties file %s: %v", path, err)
	}

	d := &Document{raw: raw}

	if gp, ok := raw["global_properties"]; ok {
		if err := json.Unmarshal(gp, &d.GlobalProperties); err != nil {
			return nil, errors.Wrapf(ErrBadProperties, "bad global_properties in %s: %v", path, err)
		}
		d.GlobalProperties.Extra = gp
	}

	if m, ok := raw["materials"]; ok {
		if err := json.Unmarshal(m, &d.materials); err != nil {
			return nil, errors.Wrapf(ErrBadProperties, "bad materials in %s: %v", path, err)
		}
	}

	if c, ok := raw["conditions"]; ok {
		d.hasConditions = true
		if err := json.Unmarshal(c, &d.conditions); err != nil {
			return nil, errors.Wrapf(ErrBadProperties, "bad conditions in %s: %v", path, err)
		}
	}

	log.Printf("props: fn=%s nmaterials=%d nconditions=%d\n", path, len(d.materials.Properties), len(d.conditions.Properties))
	return d, nil
}

// material returns the alpha_ir of a named material property record.
func (d *Document) material(name string) (float64, error) {
	raw, ok := d.materials.Properties[name]
	if !ok {
		return 0, errors.Wrapf(ErrBadProperties, "materials.properties has no entry %q", name)
	}
	var m Material
	if err := json.Unmarshal(raw, &m); err != nil {
		return 0, errors.Wrapf(ErrBadProperties, "bad material %q: %v", name, err)
	}
	return m.AlphaIR, nil
}

func (d *Document) condition(name string) (bool, error) {
	raw, ok := d.conditions.Properties[name]
	if !ok {
		return false, errors.Wrapf(ErrBadProperties, "conditions.properties has no entry %q", name)
	}
	var c Condition
	if err := json.Unmarshal(raw, &c); err != nil {
		return false, errors.Wrapf(ErrBadProperties, "bad condition %q: %v", name, err)
	}
	return c.TwoSidesRadiation, nil
}

// BuildAtlas derives the per-element arrays for a mesh with nElements
// triangles, warning (not failing) on unassigned elements and validating
// that every listed element index is in range.
func BuildAtlas(d *Document, nElements int) (*Atlas, error) {
	a := &Atlas{
		MaterialIndex: make([]int, nElements),
		AlphaIR:       make([]float64, nElements),
		TwoSides:      make([]bool, nElements),
	}
	for i := range a.MaterialIndex {
		a.MaterialIndex[i] = -1
	}

	matIndex := make(map[string]int, len(d.materials.Properties))
	names := make([]string, 0, len(d.materials.Properties))
	for name := range d.materials.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		matIndex[name] = i
	}

	for name, elems := range d.materials.Elements {
		alpha, err := d.material(name)
		if err != nil {
			return nil, err
		}
		idx, ok := matIndex[name]
		if !ok {
			return nil, errors.Wrapf(ErrBadProperties, "materials.elements references unknown material %q", name)
		}
		for _, e := range elems {
			if e < 0 || e >= nElements {
				return nil, errors.Wrapf(ErrBadProperties, "material %q references out-of-range element %d (nelements=%d)", name, e, nElements)
			}
			a.MaterialIndex[e] = idx
			a.AlphaIR[e] = alpha
		}
	}

	if d.hasConditions {
		for name, elems := range d.conditions.Elements {
			twoSides, err := d.condition(name)
			if err != nil {
				return nil, err
			}
			for _, e := range elems {
				if e < 0 || e >= nElements {
					return nil, errors.Wrapf(ErrBadProperties, "condition %q references out-of-range element %d (nelements=%d)", name, e, nElements)
				}
				a.TwoSides[e] = twoSides
			}
		}
	}

	for i, idx := range a.MaterialIndex {
		if idx == -1 {
			log.Printf("props: warning: element %d has no material assigned; using alpha_ir=0\n", i)
		}
	}

	return a, nil
}

// Rewrite merges the four orbit-derived scalar fields into global_properties
// and writes the document back to path. Every other field keeps its value,
// but the output is written by encoding/json from maps: keys come out in
// sorted order and the input's key order and line layout are not kept.
func (d *Document) Rewrite(path string, beta, period, eclipseStart, eclipseEnd float64) error {
	d.GlobalProperties.BetaAngle = &beta
	d.GlobalProperties.OrbitalPeriod = &period
	d.GlobalProperties.EclipseStart = &eclipseStart
	d.GlobalProperties.EclipseEnd = &eclipseEnd

	merged := map[string]json.RawMessage{}
	for k, v := range d.raw {
		merged[k] = v
	}
	gpBytes, err := json.Marshal(d.GlobalProperties)
	if err != nil {
		return errors.Wrap(err, "props: cannot marshal global_properties")
	}
	// fold Extra (original opaque fields) underneath the derived ones so
	// the derived values always win on key collision.
	merged["global_properties"], err = mergeRaw(d.GlobalProperties.Extra, gpBytes)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return errors.Wrap(err, "props: cannot marshal properties document")
	}
	return writeFile(path, out)
}

func mergeRaw(base, overlay json.RawMessage) (json.RawMessage, error) {
	m := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &m); err != nil {
			return nil, errors.Wrap(err, "props: cannot merge global_properties")
		}
	}
	var o map[string]json.RawMessage
	if err := json.Unmarshal(overlay, &o); err != nil {
		return nil, errors.Wrap(err, "props: cannot merge global_properties")
	}
	for k, v := range o {
		m[k] = v
	}
	return json.Marshal(m)
}

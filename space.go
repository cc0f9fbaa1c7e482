package gbtune

import (
	"fmt"
	"math"
	"math/rand"
)

//////
// Search space definition.
//
// A Space is an ordered list of named dimensions. Internally every point is a
// []float64 aligned with the space; Params wraps such a point with typed,
// by-name accessors so objective functions never index raw slices.
//////

// Prior selects the sampling distribution for a Real dimension.
type Prior string

const (
	// Uniform samples linearly between the bounds.
	Uniform Prior = "uniform"

	// LogUniform samples uniformly in log space. Use it for scale-like
	// hyperparameters (learning rates, regularization strengths) where the
	// interesting values span orders of magnitude.
	LogUniform Prior = "log-uniform"
)

// Dimension describes a single hyperparameter: its name, how to draw a random
// value from its domain, and how to map a value into the unit interval for the
// surrogate model.
//
// Values travel through the optimizer as float64 regardless of the concrete
// dimension type: Integer values are whole floats, Categorical values are
// choice indices. Params converts back on access.
type Dimension interface {
	// Name returns the hyperparameter's name. Names must be unique within
	// a Space.
	Name() string

	// Sample draws a random value from the dimension's domain using the
	// provided generator.
	Sample(rng *rand.Rand) float64

	// Unit maps a domain value into [0, 1] for the Gaussian Process. The
	// mapping must be monotonic so distances in unit space reflect
	// distances in the domain.
	Unit(x float64) float64

	// Validate reports whether the dimension's domain is well formed.
	Validate() error
}

// Real is a continuous dimension bounded by [Min, Max], sampled according to
// its prior.
type Real struct {
	name     string
	min, max float64
	prior    Prior
}

// NewReal returns a uniformly sampled continuous dimension.
func NewReal(name string, min, max float64) Real {
	return Real{name: name, min: min, max: max, prior: Uniform}
}

// NewLogReal returns a log-uniformly sampled continuous dimension. Both
// bounds must be strictly positive.
func NewLogReal(name string, min, max float64) Real {
	return Real{name: name, min: min, max: max, prior: LogUniform}
}

// Name implements Dimension.
func (d Real) Name() string { return d.name }

// Bounds returns the inclusive domain limits.
func (d Real) Bounds() (min, max float64) { return d.min, d.max }

// Sample implements Dimension.
func (d Real) Sample(rng *rand.Rand) float64 {
	if d.prior == LogUniform {
		lo, hi := math.Log(d.min), math.Log(d.max)
		return math.Exp(lo + rng.Float64()*(hi-lo))
	}

	return d.min + rng.Float64()*(d.max-d.min)
}

// Unit implements Dimension.
func (d Real) Unit(x float64) float64 {
	if d.max == d.min {
		return 0
	}

	var u float64
	if d.prior == LogUniform {
		lo, hi := math.Log(d.min), math.Log(d.max)
		u = (math.Log(x) - lo) / (hi - lo)
	} else {
		u = (x - d.min) / (d.max - d.min)
	}

	return clamp(u, 0, 1)
}

// Validate implements Dimension.
func (d Real) Validate() error {
	if d.name == "" {
		return fmt.Errorf("real dimension: empty name")
	}

	if d.min > d.max {
		return fmt.Errorf("real dimension %q: min %v > max %v", d.name, d.min, d.max)
	}

	if d.prior == LogUniform && d.min <= 0 {
		return fmt.Errorf("real dimension %q: log-uniform prior requires positive bounds", d.name)
	}

	return nil
}

// Integer is a whole-valued dimension bounded by [Min, Max], inclusive on
// both ends.
type Integer struct {
	name     string
	min, max int
}

// NewInteger returns a uniformly sampled integer dimension.
func NewInteger(name string, min, max int) Integer {
	return Integer{name: name, min: min, max: max}
}

// Name implements Dimension.
func (d Integer) Name() string { return d.name }

// Bounds returns the inclusive domain limits.
func (d Integer) Bounds() (min, max int) { return d.min, d.max }

// Sample implements Dimension.
func (d Integer) Sample(rng *rand.Rand) float64 {
	return float64(d.min + rng.Intn(d.max-d.min+1))
}

// Unit implements Dimension.
func (d Integer) Unit(x float64) float64 {
	if d.max == d.min {
		return 0
	}

	return clamp((x-float64(d.min))/float64(d.max-d.min), 0, 1)
}

// Validate implements Dimension.
func (d Integer) Validate() error {
	if d.name == "" {
		return fmt.Errorf("integer dimension: empty name")
	}

	if d.min > d.max {
		return fmt.Errorf("integer dimension %q: min %d > max %d", d.name, d.min, d.max)
	}

	return nil
}

// Categorical is an unordered choice among a fixed set of strings. Values are
// represented as choice indices.
type Categorical struct {
	name    string
	choices []string
}

// NewCategorical returns a categorical dimension over the given choices.
func NewCategorical(name string, choices ...string) Categorical {
	return Categorical{name: name, choices: choices}
}

// Name implements Dimension.
func (d Categorical) Name() string { return d.name }

// Choices returns the available categories in index order.
func (d Categorical) Choices() []string {
	out := make([]string, len(d.choices))
	copy(out, d.choices)

	return out
}

// Sample implements Dimension.
func (d Categorical) Sample(rng *rand.Rand) float64 {
	return float64(rng.Intn(len(d.choices)))
}

// Unit implements Dimension.
func (d Categorical) Unit(x float64) float64 {
	if len(d.choices) <= 1 {
		return 0
	}

	return clamp(x/float64(len(d.choices)-1), 0, 1)
}

// Validate implements Dimension.
func (d Categorical) Validate() error {
	if d.name == "" {
		return fmt.Errorf("categorical dimension: empty name")
	}

	if len(d.choices) == 0 {
		return fmt.Errorf("categorical dimension %q: no choices", d.name)
	}

	return nil
}

// Space is the ordered search space the optimizer explores. Dimension order
// defines the layout of every point the optimizer produces.
type Space []Dimension

// Validate checks every dimension and rejects duplicate names.
func (s Space) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("space: no dimensions")
	}

	seen := make(map[string]struct{}, len(s))

	for _, d := range s {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("space: %w", err)
		}

		if _, dup := seen[d.Name()]; dup {
			return fmt.Errorf("space: duplicate dimension name %q", d.Name())
		}

		seen[d.Name()] = struct{}{}
	}

	return nil
}

// Sample draws a random point from the space, one value per dimension.
func (s Space) Sample(rng *rand.Rand) []float64 {
	x := make([]float64, len(s))
	for i, d := range s {
		x[i] = d.Sample(rng)
	}

	return x
}

// Unit maps a point into the unit hypercube for the surrogate model.
func (s Space) Unit(x []float64) []float64 {
	u := make([]float64, len(s))
	for i, d := range s {
		u[i] = d.Unit(x[i])
	}

	return u
}

// index returns the position of the named dimension, or -1.
func (s Space) index(name string) int {
	for i, d := range s {
		if d.Name() == name {
			return i
		}
	}

	return -1
}

// Params is a concrete point in a Space with typed, by-name access. Objective
// functions receive their candidate hyperparameters as Params.
type Params struct {
	space Space
	x     []float64
}

// NewParams binds a raw point to its space. The point is copied.
func NewParams(space Space, x []float64) Params {
	c := make([]float64, len(x))
	copy(c, x)

	return Params{space: space, x: c}
}

// Float returns the named Real dimension's value. It panics if the name is
// unknown, which indicates a mismatch between the space and the objective.
func (p Params) Float(name string) float64 {
	i := p.space.index(name)
	if i < 0 {
		panic(fmt.Sprintf("params: unknown dimension %q", name))
	}

	return p.x[i]
}

// Int returns the named Integer dimension's value rounded to the nearest
// whole number.
func (p Params) Int(name string) int {
	return int(math.Round(p.Float(name)))
}

// Category returns the chosen string of the named Categorical dimension.
func (p Params) Category(name string) string {
	i := p.space.index(name)
	if i < 0 {
		panic(fmt.Sprintf("params: unknown dimension %q", name))
	}

	cat, ok := p.space[i].(Categorical)
	if !ok {
		panic(fmt.Sprintf("params: dimension %q is not categorical", name))
	}

	idx := clamp(int(math.Round(p.x[i])), 0, len(cat.choices)-1)

	return cat.choices[idx]
}

// Values returns a copy of the underlying point in dimension order.
func (p Params) Values() []float64 {
	c := make([]float64, len(p.x))
	copy(c, p.x)

	return c
}

// Map returns the point keyed by dimension name, suitable for printing and
// persistence.
func (p Params) Map() map[string]float64 {
	m := make(map[string]float64, len(p.space))
	for i, d := range p.space {
		m[d.Name()] = p.x[i]
	}

	return m
}

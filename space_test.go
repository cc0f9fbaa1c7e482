package gbtune

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealSampleWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewReal("x", -1.5, 2.5)

	for i := 0; i < 1000; i++ {
		v := d.Sample(rng)
		assert.GreaterOrEqual(t, v, -1.5)
		assert.LessOrEqual(t, v, 2.5)
	}
}

func TestLogRealSampleWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewLogReal("learning_rate", 0.001, 1.0)

	for i := 0; i < 1000; i++ {
		v := d.Sample(rng)
		assert.GreaterOrEqual(t, v, 0.000999) // Exp/Log round trip tolerance.
		assert.LessOrEqual(t, v, 1.0001)
	}
}

func TestIntegerSampleIsWhole(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewInteger("depth", 1, 8)

	for i := 0; i < 1000; i++ {
		v := d.Sample(rng)
		assert.Equal(t, float64(int(v)), v)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 8.0)
	}
}

func TestUnitMapsIntoUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	dims := []Dimension{
		NewReal("a", -10, 10),
		NewLogReal("b", 0.01, 100),
		NewInteger("c", 3, 9),
		NewCategorical("d", "x", "y", "z"),
	}

	for _, d := range dims {
		for i := 0; i < 200; i++ {
			u := d.Unit(d.Sample(rng))
			assert.GreaterOrEqual(t, u, 0.0, d.Name())
			assert.LessOrEqual(t, u, 1.0, d.Name())
		}
	}

	// Unit mapping is monotonic for ordered dimensions.
	r := NewReal("a", 0, 10)
	assert.Less(t, r.Unit(2), r.Unit(8))
}

func TestSpaceValidate(t *testing.T) {
	assert.Error(t, Space{}.Validate())

	assert.Error(t, Space{NewReal("x", 2, 1)}.Validate())

	assert.Error(t, Space{NewLogReal("x", -1, 1)}.Validate())

	assert.Error(t, Space{NewCategorical("x")}.Validate())

	assert.Error(t, Space{
		NewReal("x", 0, 1),
		NewInteger("x", 1, 2),
	}.Validate())

	assert.NoError(t, Space{
		NewReal("x", 0, 1),
		NewInteger("y", 1, 2),
		NewCategorical("z", "a", "b"),
	}.Validate())
}

func TestParamsAccessors(t *testing.T) {
	space := Space{
		NewReal("lr", 0, 1),
		NewInteger("depth", 1, 10),
		NewCategorical("criterion", "gini", "entropy"),
	}

	p := NewParams(space, []float64{0.25, 4, 1})

	assert.Equal(t, 0.25, p.Float("lr"))
	assert.Equal(t, 4, p.Int("depth"))
	assert.Equal(t, "entropy", p.Category("criterion"))

	assert.Equal(t, []float64{0.25, 4, 1}, p.Values())
	assert.Equal(t, map[string]float64{"lr": 0.25, "depth": 4, "criterion": 1}, p.Map())

	assert.Panics(t, func() { p.Float("missing") })
	assert.Panics(t, func() { p.Category("lr") })
}

func TestParamsCopiesInput(t *testing.T) {
	space := Space{NewReal("x", 0, 1)}

	raw := []float64{0.5}
	p := NewParams(space, raw)

	raw[0] = 0.9

	assert.Equal(t, 0.5, p.Float("x"))
}

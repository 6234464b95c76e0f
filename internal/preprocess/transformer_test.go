package preprocess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/tabcert/pkg/models"
)

func buildFrame(t *testing.T, columns []models.Column) *models.Frame {
	t.Helper()
	frame, err := models.NewFrame(columns)
	require.NoError(t, err)
	return frame
}

func TestTransformerLayout(t *testing.T) {
	frame := buildFrame(t, []models.Column{
		models.NumericColumn("age", []float64{20, 30, 40}),
		models.CategoricalColumn("color", []string{"red", "blue", "red"}),
	})

	kinds := map[string]models.ColumnKind{"age": models.KindNumeric, "color": models.KindCategorical}
	tr := FitTransformer([]*models.Frame{frame}, []string{"age", "color"}, kinds)

	// One numeric feature plus a two-category one-hot block.
	assert.Equal(t, 3, tr.Width())

	x := tr.Transform(frame)
	require.Len(t, x, 3)
	assert.Equal(t, []float64{20, 0, 1}, x[0]) // blue, red sorted
	assert.Equal(t, []float64{30, 1, 0}, x[1])
	assert.Equal(t, []float64{40, 0, 1}, x[2])
}

func TestTransformerImputesMissing(t *testing.T) {
	frame := buildFrame(t, []models.Column{
		models.NumericColumn("x", []float64{1, math.NaN(), 3}),
		models.CategoricalColumn("c", []string{"a", "", "a"}),
	})

	kinds := map[string]models.ColumnKind{"x": models.KindNumeric, "c": models.KindCategorical}
	tr := FitTransformer([]*models.Frame{frame}, []string{"x", "c"}, kinds)

	x := tr.Transform(frame)
	assert.Equal(t, 2.0, x[1][0]) // median of {1, 3}
	assert.Equal(t, 1.0, x[1][1]) // mode "a"
}

func TestTransformerUnknownCategoryIsZeroBlock(t *testing.T) {
	fit := buildFrame(t, []models.Column{
		models.CategoricalColumn("c", []string{"a", "b"}),
	})
	apply := buildFrame(t, []models.Column{
		models.CategoricalColumn("c", []string{"z", "a"}),
	})

	kinds := map[string]models.ColumnKind{"c": models.KindCategorical}
	tr := FitTransformer([]*models.Frame{fit}, []string{"c"}, kinds)

	x := tr.Transform(apply)
	assert.Equal(t, []float64{0, 0}, x[0])
	assert.Equal(t, []float64{1, 0}, x[1])
}

func TestTransformerPoolsFramesAtFit(t *testing.T) {
	a := buildFrame(t, []models.Column{
		models.CategoricalColumn("c", []string{"a", "a"}),
	})
	b := buildFrame(t, []models.Column{
		models.CategoricalColumn("c", []string{"b", "c"}),
	})

	kinds := map[string]models.ColumnKind{"c": models.KindCategorical}
	tr := FitTransformer([]*models.Frame{a, b}, []string{"c"}, kinds)

	// Categories from both frames participate in one shared layout.
	assert.Equal(t, 3, tr.Width())
	xa := tr.Transform(a)
	xb := tr.Transform(b)
	assert.Equal(t, []float64{1, 0, 0}, xa[0])
	assert.Equal(t, []float64{0, 1, 0}, xb[0])
	assert.Equal(t, []float64{0, 0, 1}, xb[1])
}

func TestTransformerAbsentColumnFullyImputed(t *testing.T) {
	fit := buildFrame(t, []models.Column{
		models.NumericColumn("x", []float64{2, 4}),
	})
	apply := buildFrame(t, []models.Column{
		models.NumericColumn("other", []float64{9}),
	})

	kinds := map[string]models.ColumnKind{"x": models.KindNumeric}
	tr := FitTransformer([]*models.Frame{fit}, []string{"x"}, kinds)

	x := tr.Transform(apply)
	require.Len(t, x, 1)
	assert.Equal(t, []float64{3}, x[0])
}

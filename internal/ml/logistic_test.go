package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/tabcert/pkg/errors"
)

func separableData() ([][]float64, []bool) {
	x := [][]float64{
		{-3, -2}, {-2.5, -1}, {-2, -3}, {-1.5, -2}, {-3.5, -1.5},
		{3, 2}, {2.5, 1}, {2, 3}, {1.5, 2}, {3.5, 1.5},
	}
	y := []bool{false, false, false, false, false, true, true, true, true, true}
	return x, y
}

func TestTrainBinarySeparableData(t *testing.T) {
	x, y := separableData()

	model, err := TrainBinary(x, y, DefaultConfig())
	require.NoError(t, err)

	for i, row := range x {
		p := model.Proba(row)
		if y[i] {
			assert.Greater(t, p, 0.5, "row %d should score positive", i)
		} else {
			assert.Less(t, p, 0.5, "row %d should score negative", i)
		}
	}
}

func TestTrainBinaryDeterministic(t *testing.T) {
	x, y := separableData()

	m1, err := TrainBinary(x, y, DefaultConfig())
	require.NoError(t, err)
	m2, err := TrainBinary(x, y, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, m1.ProbaAll(x), m2.ProbaAll(x))
}

func TestTrainBinarySingleClassFails(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []bool{true, true, true}

	_, err := TrainBinary(x, y, nil)
	assert.True(t, errors.IsCode(err, errors.CodeDegenerateTraining))
}

func TestTrainBinaryEmptyInputFails(t *testing.T) {
	_, err := TrainBinary(nil, nil, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInsufficientData))
}

func TestProbaAllMatchesProba(t *testing.T) {
	x, y := separableData()
	model, err := TrainBinary(x, y, nil)
	require.NoError(t, err)

	all := model.ProbaAll(x)
	require.Len(t, all, len(x))
	for i, row := range x {
		assert.Equal(t, model.Proba(row), all[i])
	}
}

func TestTrainOneVsRest(t *testing.T) {
	x := [][]float64{
		{0, 0}, {0.2, 0.1}, {-0.1, 0.2},
		{5, 5}, {5.2, 4.8}, {4.9, 5.1},
		{-5, 5}, {-5.1, 4.9}, {-4.8, 5.2},
	}
	labels := []string{"a", "a", "a", "b", "b", "b", "c", "c", "c"}

	model, err := TrainOneVsRest(x, labels, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, model.Classes)

	preds := model.PredictAll(x)
	assert.Equal(t, labels, preds)
}

func TestTrainOneVsRestSingleClassFails(t *testing.T) {
	x := [][]float64{{1}, {2}}
	_, err := TrainOneVsRest(x, []string{"a", "a"}, nil)
	assert.Error(t, err)
}

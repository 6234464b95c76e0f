package preprocess

import (
	"math"
	"sort"

	"github.com/inferloop/tabcert/pkg/models"
)

// Transformer is the shared preprocessing pipeline fit once and reused for
// every downstream model, guaranteeing an identical feature space. Numeric
// features are imputed with the fit-time column median; categorical features
// are imputed with the fit-time mode and one-hot encoded, with categories
// unseen at fit time mapping to an all-zero indicator block.
type Transformer struct {
	numeric     []numericFeature
	categorical []categoricalFeature
	width       int
}

type numericFeature struct {
	name   string
	median float64
}

type categoricalFeature struct {
	name   string
	mode   string
	index  map[string]int // category -> offset within the block
	size   int
	offset int // block start within the feature vector
}

// FitTransformer fits the pipeline over the union of all rows of the given
// frames, for the named feature columns. The column kind is taken from the
// kinds map (the real frame's classification), so both frames share one
// layout even when their own classifications disagree.
func FitTransformer(frames []*models.Frame, featureCols []string, kinds map[string]models.ColumnKind) *Transformer {
	t := &Transformer{}

	for _, name := range featureCols {
		if kinds[name] == models.KindNumeric {
			var pool []float64
			for _, f := range frames {
				if col, ok := f.Column(name); ok {
					pool = append(pool, col.NonMissing()...)
				}
			}
			t.numeric = append(t.numeric, numericFeature{name: name, median: medianOf(pool)})
			continue
		}

		counts := make(map[string]int)
		for _, f := range frames {
			col, ok := f.Column(name)
			if !ok {
				continue
			}
			for i, raw := range col.Raw {
				if !col.Missing[i] {
					counts[raw]++
				}
			}
		}
		cats := make([]string, 0, len(counts))
		for c := range counts {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		index := make(map[string]int, len(cats))
		mode, modeCount := "", -1
		for i, c := range cats {
			index[c] = i
			if counts[c] > modeCount {
				mode, modeCount = c, counts[c]
			}
		}

		t.categorical = append(t.categorical, categoricalFeature{
			name:  name,
			mode:  mode,
			index: index,
			size:  len(cats),
		})
	}

	// Numeric features first, then the one-hot blocks.
	t.width = len(t.numeric)
	for i := range t.categorical {
		t.categorical[i].offset = t.width
		t.width += t.categorical[i].size
	}

	return t
}

// Width returns the dimensionality of the emitted feature vectors.
func (t *Transformer) Width() int { return t.width }

// Transform emits the dense feature matrix for a frame. A feature column
// absent from the frame is treated as entirely missing and imputed.
func (t *Transformer) Transform(frame *models.Frame) [][]float64 {
	rows := frame.Rows()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, t.width)
	}

	for j, feat := range t.numeric {
		col, ok := frame.Column(feat.name)
		for i := 0; i < rows; i++ {
			v := feat.median
			if ok && !math.IsNaN(col.Values[i]) {
				v = col.Values[i]
			}
			out[i][j] = v
		}
	}

	for _, feat := range t.categorical {
		col, ok := frame.Column(feat.name)
		for i := 0; i < rows; i++ {
			raw := feat.mode
			if ok && !col.Missing[i] {
				raw = col.Raw[i]
			}
			if pos, known := feat.index[raw]; known {
				out[i][feat.offset+pos] = 1
			}
			// Unknown categories leave the whole block zero.
		}
	}

	return out
}

func medianOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

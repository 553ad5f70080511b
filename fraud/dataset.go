// Package fraud contains the tuning harness the optimizer was built for:
// tabular transaction data loading, feature scaling, a logistic classifier
// whose parameters are tuned as a flat vector, and evaluation metrics.  The
// optimizer core knows nothing about any of this; it only sees the objective
// function built by Fitness.
package fraud

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// Dataset is a labeled table of transactions: one row of feature values per
// transaction plus a binary label (1 = fraud).
type Dataset struct {
	Names    []string
	Features [][]float64
	Labels   []int
}

// Load reads a CSV dataset with a header row.  Every column except the last
// is parsed as a numeric feature; the last column is the 0/1 label.
func Load(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("dataset needs at least one feature column and a label column, got %v columns", len(header))
	}
	nfeat := len(header) - 1

	d := &Dataset{Names: append([]string{}, header[:nfeat]...)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("line %v: %w", line, err)
		}

		row := make([]float64, nfeat)
		for j := 0; j < nfeat; j++ {
			row[j], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %v, column %q: %w", line, header[j], err)
			}
		}
		label, err := strconv.Atoi(rec[nfeat])
		if err != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("line %v: label must be 0 or 1, got %q", line, rec[nfeat])
		}

		d.Features = append(d.Features, row)
		d.Labels = append(d.Labels, label)
	}
	return d, nil
}

func (d *Dataset) Len() int { return len(d.Features) }

func (d *Dataset) Dim() int {
	if len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

// Split partitions the dataset into train and test subsets, reserving
// testFrac of the rows (shuffled by rng) for the test set.
func (d *Dataset) Split(testFrac float64, rng *rand.Rand) (train, test *Dataset) {
	perm := rng.Perm(d.Len())
	ntest := int(float64(d.Len()) * testFrac)

	train = &Dataset{Names: d.Names}
	test = &Dataset{Names: d.Names}
	for i, idx := range perm {
		dst := train
		if i < ntest {
			dst = test
		}
		dst.Features = append(dst.Features, d.Features[idx])
		dst.Labels = append(dst.Labels, d.Labels[idx])
	}
	return train, test
}

// Scaler rescales features into [0, 1] per column (min-max scaling).  Fit it
// on training data and apply the same scaler to held-out data.
type Scaler struct {
	Min []float64
	Max []float64
}

func FitScaler(d *Dataset) *Scaler {
	dim := d.Dim()
	s := &Scaler{
		Min: make([]float64, dim),
		Max: make([]float64, dim),
	}
	col := make([]float64, d.Len())
	for j := 0; j < dim; j++ {
		for i, row := range d.Features {
			col[i] = row[j]
		}
		s.Min[j] = floats.Min(col)
		s.Max[j] = floats.Max(col)
	}
	return s
}

// Transform returns a copy of d with every feature rescaled into [0, 1].
// Constant columns map to 0; values outside the fitted range extrapolate
// beyond [0, 1].
func (s *Scaler) Transform(d *Dataset) *Dataset {
	out := &Dataset{
		Names:  d.Names,
		Labels: append([]int{}, d.Labels...),
	}
	for _, row := range d.Features {
		scaled := make([]float64, len(row))
		for j, v := range row {
			if span := s.Max[j] - s.Min[j]; span > 0 {
				scaled[j] = (v - s.Min[j]) / span
			}
		}
		out.Features = append(out.Features, scaled)
	}
	return out
}

// Synthetic generates a linearly separable-ish transaction dataset for tests
// and demos: fraud risk grows with amount and velocity, following the
// hand-tuned weights a rule-based scorer would use.
func Synthetic(n int, rng *rand.Rand) *Dataset {
	d := &Dataset{Names: []string{"amount", "velocity", "new_location", "unusual_hour"}}
	for i := 0; i < n; i++ {
		row := []float64{
			rng.Float64() * 5000, // amount
			float64(rng.Intn(20)),
			float64(rng.Intn(2)),
			float64(rng.Intn(2)),
		}
		score := 0.35*(row[0]/5000) + 0.28*(row[1]/20) + 0.18*row[2] + 0.12*row[3] - 0.45
		label := 0
		if score > 0 {
			label = 1
		}
		d.Features = append(d.Features, row)
		d.Labels = append(d.Labels, label)
	}
	return d
}

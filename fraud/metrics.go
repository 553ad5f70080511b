package fraud

import (
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Confusion is a binary confusion matrix with fraud as the positive class.
type Confusion struct {
	TP, FP, TN, FN int
}

// Evaluate classifies every row of d and tallies the confusion matrix.
func Evaluate(m *Logistic, d *Dataset) Confusion {
	var c Confusion
	for i, row := range d.Features {
		pred := m.Predict(row)
		switch {
		case pred == 1 && d.Labels[i] == 1:
			c.TP++
		case pred == 1 && d.Labels[i] == 0:
			c.FP++
		case pred == 0 && d.Labels[i] == 0:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}

func (c Confusion) Total() int { return c.TP + c.FP + c.TN + c.FN }

func (c Confusion) Accuracy() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(c.Total())
}

func (c Confusion) Precision() float64 {
	if c.TP+c.FP == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

func (c Confusion) Recall() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// ROC computes the receiver operating characteristic of the classifier's
// scores over d and the area under it.
func ROC(m *Logistic, d *Dataset) (tpr, fpr []float64, auc float64) {
	scores := make([]float64, d.Len())
	classes := make([]bool, d.Len())
	for i, row := range d.Features {
		scores[i] = m.Score(row)
		classes[i] = d.Labels[i] == 1
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ = stat.ROC(nil, scores, classes, nil)
	auc = integrate.Trapezoidal(fpr, tpr)
	return tpr, fpr, auc
}

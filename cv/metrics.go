package cv

// Accuracy returns the fraction of predictions matching the true labels.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(yTrue))
}

// PrecisionRecallF1 computes binary classification metrics treating label 1
// as the positive class.
func PrecisionRecallF1(yTrue, yPred []int) (precision, recall, f1 float64) {
	tp, fp, fn := 0, 0, 0

	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1 && yTrue[i] == 0:
			fp++
		case yPred[i] == 0 && yTrue[i] == 1:
			fn++
		}
	}

	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}

	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}

	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return precision, recall, f1
}

package fetch

import "fmt"

// Batch is a half-open [From, To) index range over a record slice.
type Batch struct {
	From int
	To   int
}

// SplitBatches chunks total records into write batches of at most batchSize.
func SplitBatches(total, batchSize int) ([]Batch, error) {
	if total < 0 {
		return nil, fmt.Errorf("total must not be negative")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if total == 0 {
		return nil, nil
	}

	batches := make([]Batch, 0, (total+batchSize-1)/batchSize)
	for from := 0; from < total; from += batchSize {
		to := from + batchSize
		if to > total {
			to = total
		}
		batches = append(batches, Batch{From: from, To: to})
	}
	return batches, nil
}

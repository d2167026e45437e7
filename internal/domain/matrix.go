package domain

// MatrixPair is an immutable snapshot of the square time/distance matrices
// over the project's stops, row/column 0 being the depot. The core never
// acquires this itself (§2 item 1); it is handed a matrix pair produced
// elsewhere and treated as read-only for the duration of one operation.
type MatrixPair struct {
	// Time[i][j] in seconds, Distance[i][j] in meters.
	Time     [][]float64
	Distance [][]float64
	// Hash identifies the snapshot content; stop-set or matrix changes
	// invalidate any plan artifact built against a different hash.
	Hash string
}

func (m MatrixPair) Size() int {
	return len(m.Time)
}

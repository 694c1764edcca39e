package model

import "math"

// cosineMatrix returns the pairwise cosine similarity between the rows of a
// dense matrix. The result is symmetric; a zero row has similarity 0 with
// everything, itself included.
func cosineMatrix(rows [][]float64) [][]float64 {
	norms := make([]float64, len(rows))
	for i, row := range rows {
		norms[i] = denseNorm(row)
	}

	sim := newSquare(len(rows))
	for i := range rows {
		if norms[i] == 0 {
			continue
		}
		sim[i][i] = 1
		for j := i + 1; j < len(rows); j++ {
			if norms[j] == 0 {
				continue
			}
			s := denseDot(rows[i], rows[j]) / (norms[i] * norms[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

// sparseCosineMatrix is cosineMatrix for sparse rows.
func sparseCosineMatrix(rows []sparseVector) [][]float64 {
	norms := make([]float64, len(rows))
	for i, row := range rows {
		norms[i] = row.norm()
	}

	sim := newSquare(len(rows))
	for i := range rows {
		if norms[i] == 0 {
			continue
		}
		sim[i][i] = 1
		for j := i + 1; j < len(rows); j++ {
			if norms[j] == 0 {
				continue
			}
			s := rows[i].dot(rows[j]) / (norms[i] * norms[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

func sparseCosine(a, b sparseVector) float64 {
	na, nb := a.norm(), b.norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.dot(b) / (na * nb)
}

func newSquare(n int) [][]float64 {
	return newMatrix(n, n)
}

// newMatrix allocates a zeroed rows x cols matrix over one backing slice.
func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols]
	}
	return m
}

func denseDot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func denseNorm(a []float64) float64 {
	return math.Sqrt(denseDot(a, a))
}

// sparseVector holds non-zero entries with strictly increasing indices.
type sparseVector struct {
	idx []int
	val []float64
}

func (v sparseVector) dot(o sparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.idx) && j < len(o.idx) {
		switch {
		case v.idx[i] == o.idx[j]:
			sum += v.val[i] * o.val[j]
			i++
			j++
		case v.idx[i] < o.idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

func (v sparseVector) norm() float64 {
	var sum float64
	for _, x := range v.val {
		sum += x * x
	}
	return math.Sqrt(sum)
}

package model

// IntersectionMatrix counts shared keywords between every pair of domains.
// The diagonal holds each domain's dataset size.
type IntersectionMatrix struct {
	Domains []string `json:"domains"`
	Counts  [][]int  `json:"counts"`
}

// NewIntersectionMatrix returns a zeroed square matrix over domains.
func NewIntersectionMatrix(domains []string) IntersectionMatrix {
	counts := make([][]int, len(domains))
	for i := range counts {
		counts[i] = make([]int, len(domains))
	}
	return IntersectionMatrix{Domains: domains, Counts: counts}
}

// Index returns the row/column of domain, or -1.
func (m IntersectionMatrix) Index(domain string) int {
	for i, d := range m.Domains {
		if d == domain {
			return i
		}
	}
	return -1
}

// Get returns the count for (a, b). ok is false if either domain is absent.
func (m IntersectionMatrix) Get(a, b string) (count int, ok bool) {
	i, j := m.Index(a), m.Index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Counts[i][j], true
}

// Size returns the number of domains in the matrix.
func (m IntersectionMatrix) Size() int {
	return len(m.Domains)
}

// Rows returns the matrix as nested maps, the shape used when persisting.
func (m IntersectionMatrix) Rows() map[string]map[string]int {
	out := make(map[string]map[string]int, len(m.Domains))
	for i, a := range m.Domains {
		row := make(map[string]int, len(m.Domains))
		for j, b := range m.Domains {
			row[b] = m.Counts[i][j]
		}
		out[a] = row
	}
	return out
}

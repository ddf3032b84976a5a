package gap

import "github.com/sells-group/content-gap/internal/model"

// BuildMatrix computes the intersection matrix over datasets, in the order
// given. Each unordered pair is computed once and mirrored.
func BuildMatrix(datasets []model.DomainDataset) model.IntersectionMatrix {
	domains := make([]string, len(datasets))
	sets := make([]map[string]struct{}, len(datasets))
	for i, ds := range datasets {
		domains[i] = ds.Domain
		sets[i] = ds.KeywordSet()
	}

	m := model.NewIntersectionMatrix(domains)
	for i := range datasets {
		m.Counts[i][i] = datasets[i].Len()
		for j := i + 1; j < len(datasets); j++ {
			n := intersectionSize(sets[i], sets[j])
			m.Counts[i][j] = n
			m.Counts[j][i] = n
		}
	}
	return m
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

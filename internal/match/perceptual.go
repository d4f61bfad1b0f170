// Package match groups near-duplicate images by perceptual hash distance.
package match

import (
	"simindex/internal/bktree"
	"simindex/internal/distance"
	"simindex/internal/models"
)

// PerceptualMatcher finds groups of similar images using perceptual hashing
type PerceptualMatcher struct {
	threshold int
}

// NewPerceptualMatcher creates a new PerceptualMatcher
func NewPerceptualMatcher(threshold int) *PerceptualMatcher {
	if threshold < 0 {
		threshold = 10 // Default threshold
	}
	return &PerceptualMatcher{threshold: threshold}
}

// FindGroups finds groups of similar images based on Hamming distance.
// A BK-tree over image indices keeps the search sub-quadratic: each image
// is matched against the already-indexed ones, then inserted.
func (m *PerceptualMatcher) FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, error) {
	n := len(images)
	if n < 2 {
		return nil, nil
	}

	uf := newUnionFind(n)

	// The tree indexes positions into images; the metric compares the
	// hashes behind them.
	tree := bktree.New(func(a, b int) int {
		return distance.Hamming(images[a].Hash, images[b].Hash)
	})

	for i := range images {
		neighbors, err := tree.Find(i, m.threshold)
		if err != nil {
			return nil, err
		}
		for _, r := range neighbors {
			uf.union(i, r.Item)
		}
		if err := tree.Insert(i); err != nil {
			return nil, err
		}
	}

	// Collect groups in first-seen order so output is deterministic
	groupIdx := make(map[int]int)
	var members [][]*models.ImageInfo
	for i, img := range images {
		root := uf.find(i)
		idx, seen := groupIdx[root]
		if !seen {
			idx = len(members)
			groupIdx[root] = idx
			members = append(members, nil)
		}
		members[idx] = append(members[idx], img)
	}

	var groups []*models.DuplicateGroup
	for _, imgs := range members {
		if len(imgs) < 2 {
			continue
		}
		groups = append(groups, &models.DuplicateGroup{
			ID:     len(groups) + 1,
			Images: imgs,
		})
	}

	return groups, nil
}

// Threshold returns the current threshold
func (m *PerceptualMatcher) Threshold() int {
	return m.threshold
}

// Union-Find data structure for efficient grouping
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	rank := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: rank}
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x]) // Path compression
	}
	return uf.parent[x]
}

func (uf *unionFind) union(x, y int) {
	px, py := uf.find(x), uf.find(y)
	if px == py {
		return
	}
	// Union by rank
	if uf.rank[px] < uf.rank[py] {
		px, py = py, px
	}
	uf.parent[py] = px
	if uf.rank[px] == uf.rank[py] {
		uf.rank[px]++
	}
}

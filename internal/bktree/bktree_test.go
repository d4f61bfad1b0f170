package bktree

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"simindex/internal/distance"
)

var corpus = []string{
	"book", "books", "boo", "boom", "box", "cake", "cape", "cart",
	"cat", "cut", "help", "hell", "hello", "loop", "pool", "polo",
	"shell", "shelf", "self", "shore", "store", "story", "stone",
	"tone", "tune", "toon", "spoon", "spawn", "word", "ward",
}

func buildWordTree(t *testing.T, words []string) *Tree[string] {
	t.Helper()
	tree := New(distance.Levenshtein)
	if err := tree.InsertAll(words...); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}
	return tree
}

func TestTree_Empty(t *testing.T) {
	tree := New(distance.Levenshtein)

	if tree.Size() != 0 {
		t.Errorf("expected size 0, got %d", tree.Size())
	}
	if tree.Depth() != 0 {
		t.Errorf("expected depth 0, got %d", tree.Depth())
	}

	results, err := tree.Query("book", 10)
	if err != nil {
		t.Fatalf("Query on empty tree failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results from Query, got %v", results)
	}

	results, err = tree.Find("book", 10)
	if err != nil {
		t.Fatalf("Find on empty tree failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results from Find, got %v", results)
	}
}

func TestTree_SingleElement(t *testing.T) {
	tree := buildWordTree(t, []string{"book"})

	// Exact match
	results, err := tree.Query("book", 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	want := []Result[string]{{Distance: 0, Item: "book"}}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("expected %v, got %v", want, results)
	}

	// Within threshold
	results, _ = tree.Query("boo", 1)
	if len(results) != 1 || results[0].Distance != 1 {
		t.Errorf("expected one match at distance 1, got %v", results)
	}

	// Outside threshold
	results, _ = tree.Query("carpet", 2)
	if len(results) != 0 {
		t.Errorf("expected no matches, got %v", results)
	}
}

func TestTree_BookScenario(t *testing.T) {
	tree := buildWordTree(t, []string{"book", "boo", "boom", "box"})

	want := []Result[string]{
		{Distance: 0, Item: "book"},
		{Distance: 1, Item: "boo"},
		{Distance: 1, Item: "boom"},
	}

	query, err := tree.Query("book", 1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if !reflect.DeepEqual(query, want) {
		t.Errorf("Query(book, 1) = %v, want %v", query, want)
	}

	find, err := tree.Find("book", 1)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !reflect.DeepEqual(find, query) {
		t.Errorf("Find(book, 1) = %v, differs from Query = %v", find, query)
	}
}

func TestTree_QueryFindEquivalence(t *testing.T) {
	tree := buildWordTree(t, corpus)

	targets := []string{"book", "shel", "stone", "zzzz", "ca", "spoon", ""}
	for _, target := range targets {
		for threshold := 0; threshold <= 4; threshold++ {
			query, err := tree.Query(target, threshold)
			if err != nil {
				t.Fatalf("Query(%q, %d) failed: %v", target, threshold, err)
			}
			find, err := tree.Find(target, threshold)
			if err != nil {
				t.Fatalf("Find(%q, %d) failed: %v", target, threshold, err)
			}
			if !reflect.DeepEqual(query, find) {
				t.Errorf("Query(%q, %d) = %v, but Find = %v", target, threshold, query, find)
			}
		}
	}
}

func TestTree_PruningMatchesBruteForce(t *testing.T) {
	tree := buildWordTree(t, corpus)

	targets := []string{"book", "stor", "hel", "toom", "xyz"}
	for _, target := range targets {
		for threshold := 0; threshold <= 3; threshold++ {
			got, err := tree.Find(target, threshold)
			if err != nil {
				t.Fatalf("Find(%q, %d) failed: %v", target, threshold, err)
			}
			want := BruteForce(distance.Levenshtein, corpus, target, threshold)

			sortResults(got)
			sortResults(want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Find(%q, %d) = %v, brute force = %v", target, threshold, got, want)
			}
		}
	}
}

func sortResults(rs []Result[string]) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Distance != rs[j].Distance {
			return rs[i].Distance < rs[j].Distance
		}
		return rs[i].Item < rs[j].Item
	})
}

func TestTree_DuplicateInsertion(t *testing.T) {
	tree := buildWordTree(t, []string{"book", "book", "book"})

	// Equal items chain through the distance-0 slot; each insertion adds
	// a node.
	if tree.Size() != 3 {
		t.Errorf("expected size 3, got %d", tree.Size())
	}
	if tree.Depth() != 3 {
		t.Errorf("expected depth 3, got %d", tree.Depth())
	}

	results, err := tree.Query("book", 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 matches, got %v", results)
	}
	for _, r := range results {
		if r.Distance != 0 || r.Item != "book" {
			t.Errorf("unexpected match %v", r)
		}
	}
}

func TestTree_SelfMatch(t *testing.T) {
	tree := buildWordTree(t, corpus)

	for _, word := range corpus {
		results, err := tree.Find(word, 0)
		if err != nil {
			t.Fatalf("Find(%q, 0) failed: %v", word, err)
		}
		found := false
		for _, r := range results {
			if r.Distance == 0 && r.Item == word {
				found = true
			}
		}
		if !found {
			t.Errorf("Find(%q, 0) did not include the word itself: %v", word, results)
		}
	}
}

func TestTree_NegativeThreshold(t *testing.T) {
	tree := buildWordTree(t, []string{"book", "boo"})

	results, err := tree.Query("book", -1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no matches for negative threshold, got %v", results)
	}
}

func TestTree_Unbound(t *testing.T) {
	tree := New[string](nil)

	if err := tree.Insert("book"); !errors.Is(err, ErrUnboundDistance) {
		t.Errorf("Insert on unbound tree: got %v, want ErrUnboundDistance", err)
	}
	if _, err := tree.Query("book", 1); !errors.Is(err, ErrUnboundDistance) {
		t.Errorf("Query on unbound tree: got %v, want ErrUnboundDistance", err)
	}
	if _, err := tree.Find("book", 1); !errors.Is(err, ErrUnboundDistance) {
		t.Errorf("Find on unbound tree: got %v, want ErrUnboundDistance", err)
	}

	tree.Bind(distance.Levenshtein)
	if err := tree.Insert("book"); err != nil {
		t.Fatalf("Insert after Bind failed: %v", err)
	}
	results, err := tree.Find("book", 0)
	if err != nil {
		t.Fatalf("Find after Bind failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected one match after Bind, got %v", results)
	}
}

func TestTree_Items(t *testing.T) {
	tree := buildWordTree(t, []string{"book", "boo", "boom", "box"})

	// Preorder with ascending child keys: book, then its distance-1
	// subtree (boo, boom), then distance-2 (box).
	want := []string{"book", "boo", "boom", "box"}
	if got := tree.Items(); !reflect.DeepEqual(got, want) {
		t.Errorf("Items() = %v, want %v", got, want)
	}

	if tree.Size() != 4 {
		t.Errorf("expected size 4, got %d", tree.Size())
	}
}

func TestTree_HammingMetric(t *testing.T) {
	tree := New(distance.Hamming)
	hashes := []uint64{0b0000, 0b0001, 0b0011, 0b1111}
	if err := tree.InsertAll(hashes...); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	results, err := tree.Find(0b0000, 2)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 matches within distance 2, got %v", results)
	}
	for _, r := range results {
		if r.Distance > 2 {
			t.Errorf("match %v exceeds threshold", r)
		}
	}
}

func BenchmarkTree_Insert(b *testing.B) {
	words := syntheticWords(100000)
	tree := New(distance.Levenshtein)
	for i := 0; i < b.N; i++ {
		tree.Insert(words[i%len(words)])
	}
}

func BenchmarkTree_Find(b *testing.B) {
	words := syntheticWords(5000)
	tree := New(distance.Levenshtein)
	tree.InsertAll(words...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Find(words[i%len(words)], 1)
	}
}

func BenchmarkBruteForce(b *testing.B) {
	words := syntheticWords(5000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BruteForce(distance.Levenshtein, words, words[i%len(words)], 1)
	}
}

func syntheticWords(n int) []string {
	const letters = "abcdefgh"
	words := make([]string, 0, n)
	seed := uint64(42)
	for len(words) < n {
		seed = seed*6364136223846793005 + 1442695040888963407
		w := make([]byte, 3+seed%6)
		s := seed
		for i := range w {
			w[i] = letters[s%uint64(len(letters))]
			s /= uint64(len(letters))
		}
		words = append(words, string(w))
	}
	return words
}

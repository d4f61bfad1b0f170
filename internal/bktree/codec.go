package bktree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tidwall/gjson"
)

// FormatError reports a malformed persisted tree document. Path locates the
// offending node in the document ("root", "root.children.2", ...).
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bktree: malformed tree document at %s: %s", e.Path, e.Reason)
}

// StorageError reports an I/O failure reading or writing a persisted tree.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("bktree: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("bktree: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// nodeDoc is the persisted form of a node: the item as raw JSON plus
// children keyed by decimal distance. The distance function is never
// persisted; a decoded tree must be bound to a compatible one.
type nodeDoc struct {
	Item     json.RawMessage     `json:"item"`
	Children map[string]*nodeDoc `json:"children,omitempty"`
}

// Encode writes the tree as a nested JSON document to w. An empty tree
// encodes as JSON null.
func (t *Tree[A]) Encode(w io.Writer) error {
	doc, err := encodeNode(t.root)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("bktree: encode tree: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

func encodeNode[A any](n *node[A]) (*nodeDoc, error) {
	if n == nil {
		return nil, nil
	}

	item, err := json.Marshal(n.item)
	if err != nil {
		return nil, fmt.Errorf("bktree: encode item: %w", err)
	}

	doc := &nodeDoc{Item: item}
	if len(n.children) > 0 {
		doc.Children = make(map[string]*nodeDoc, len(n.children))
		for dist, child := range n.children {
			sub, err := encodeNode(child)
			if err != nil {
				return nil, err
			}
			doc.Children[strconv.Itoa(dist)] = sub
		}
	}
	return doc, nil
}

// SaveFile writes the tree to a file, replacing any existing content.
func (t *Tree[A]) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &StorageError{Op: "create", Path: path, Err: err}
	}

	if err := t.Encode(f); err != nil {
		f.Close()
		if se, ok := err.(*StorageError); ok {
			se.Path = path
			return se
		}
		return err
	}

	if err := f.Close(); err != nil {
		return &StorageError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// Decode reads a tree document from r and rebuilds the node graph, binding
// fn as the distance function. A nil fn yields an unbound tree that must be
// Bind-ed before use. Stored distance keys are not revalidated against fn;
// the caller must supply a function consistent with the one used to build
// the tree, or query results become unreliable.
func Decode[A any](r io.Reader, fn DistanceFunc[A]) (*Tree[A], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	if !gjson.ValidBytes(data) {
		return nil, &FormatError{Path: "root", Reason: "invalid JSON"}
	}

	t := New[A](fn)
	v := gjson.ParseBytes(data)
	if v.Type == gjson.Null {
		return t, nil
	}

	root, err := decodeNode[A](v, "root")
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func decodeNode[A any](v gjson.Result, path string) (*node[A], error) {
	if !v.IsObject() {
		return nil, &FormatError{Path: path, Reason: "node is not an object"}
	}

	item := v.Get("item")
	if !item.Exists() {
		return nil, &FormatError{Path: path, Reason: "missing item field"}
	}

	n := &node[A]{children: make(map[int]*node[A])}
	if err := json.Unmarshal([]byte(item.Raw), &n.item); err != nil {
		return nil, &FormatError{Path: path + ".item", Reason: err.Error()}
	}

	children := v.Get("children")
	if !children.Exists() {
		return n, nil
	}
	if !children.IsObject() {
		return nil, &FormatError{Path: path + ".children", Reason: "children is not an object"}
	}

	var decodeErr error
	children.ForEach(func(key, value gjson.Result) bool {
		childPath := path + ".children." + key.String()

		dist, err := strconv.Atoi(key.String())
		if err != nil || dist < 0 {
			decodeErr = &FormatError{Path: childPath, Reason: "child key is not a non-negative integer"}
			return false
		}

		child, err := decodeNode[A](value, childPath)
		if err != nil {
			decodeErr = err
			return false
		}
		n.children[dist] = child
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return n, nil
}

// LoadFile reads a tree from a file written by SaveFile.
func LoadFile[A any](path string, fn DistanceFunc[A]) (*Tree[A], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	t, err := Decode(f, fn)
	if err != nil {
		if se, ok := err.(*StorageError); ok {
			se.Path = path
		}
		return nil, err
	}
	return t, nil
}

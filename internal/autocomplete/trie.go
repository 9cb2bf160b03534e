// Package autocomplete provides an in-memory prefix index over recurring
// entry names (vehicle makes, models, service particulars). A Trie is built
// per composition session from storage and discarded afterwards; it is not
// kept in sync with the database between sessions.
package autocomplete

import (
	"strings"
	"unicode"
)

// MaxSuggestions caps the number of results a single Suggest call returns.
const MaxSuggestions = 5

type trieNode struct {
	children map[rune]*trieNode
	// order preserves per-node child insertion order. Words are inserted
	// most-recently-used first, so a fixed-order traversal approximates a
	// recency ranking without storing timestamps in the tree.
	order  []rune
	isWord bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// Trie is a case-folded prefix tree. Edges are stored lowercase; the original
// casing is reduced to a capitalized first letter at output time.
type Trie struct {
	root *trieNode
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert adds a word to the trie. Blank input is a no-op.
func (t *Trie) Insert(word string) {
	word = capitalize(word)
	if word == "" {
		return
	}

	node := t.root
	for _, c := range strings.ToLower(word) {
		child, ok := node.children[c]
		if !ok {
			child = newTrieNode()
			node.children[c] = child
			node.order = append(node.order, c)
		}
		node = child
	}
	node.isWord = true
}

// Suggest returns up to MaxSuggestions completions of prefix, each with its
// first letter capitalized. An unmatched prefix returns an empty slice. The
// collection walks children in insertion order, so with most-recent-first
// insertion the result set leans towards recently used words; it is not an
// exact top-k by recency.
func (t *Trie) Suggest(prefix string) []string {
	results := []string{}
	normalized := capitalize(prefix)

	node := t.root
	for _, c := range strings.ToLower(normalized) {
		child, ok := node.children[c]
		if !ok {
			return results
		}
		node = child
	}

	var path strings.Builder
	path.WriteString(strings.ToLower(normalized))
	collectLimited(node, &path, &results, MaxSuggestions)

	for i, word := range results {
		results[i] = capitalize(word)
	}
	return results
}

// collectLimited gathers complete words below node depth-first, stopping the
// moment max results have been found.
func collectLimited(node *trieNode, path *strings.Builder, results *[]string, max int) {
	if len(*results) >= max {
		return
	}
	if node.isWord {
		*results = append(*results, path.String())
	}
	for _, c := range node.order {
		path.WriteRune(c)
		collectLimited(node.children[c], path, results, max)
		trimLastRune(path)
		if len(*results) >= max {
			return
		}
	}
}

// Clear drops all entries, ready for re-seeding.
func (t *Trie) Clear() {
	t.root = newTrieNode()
}

// capitalize trims the word and normalizes it to a capitalized first letter
// with the remainder lowercase. Blank input yields the empty string.
func capitalize(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}

	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func trimLastRune(b *strings.Builder) {
	s := b.String()
	runes := []rune(s)
	b.Reset()
	b.WriteString(string(runes[:len(runes)-1]))
}

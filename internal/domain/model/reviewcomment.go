package model

import "time"

// GhostLogin is the author GitHub reports for comments whose account was deleted.
const GhostLogin = "ghost"

// ReviewComment represents an inline review comment on a pull request.
//
// Both identifiers are kept: ID (REST database ID) is what replies and display
// use, NodeID (GraphQL global ID) is what GraphQL operations use.
type ReviewComment struct {
	ID           int64
	NodeID       string
	Body         string
	Path         string
	Line         *int // Line in the new version; nil when the region no longer exists.
	OriginalLine *int // Line in the old version.
	DiffHunk     string
	Author       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	InReplyToID  *int64
	ReviewID     *int64
}

// IsReply reports whether the comment answers another comment.
func (c ReviewComment) IsReply() bool {
	return c.InReplyToID != nil
}

// GroupReplyChains groups comments into reply chains keyed by their root comment,
// preserving the order in which roots first appear. A reply whose parent is not in
// the set starts its own chain rather than being dropped.
func GroupReplyChains(comments []ReviewComment) [][]ReviewComment {
	byID := make(map[int64]ReviewComment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	rootOf := func(c ReviewComment) int64 {
		seen := map[int64]bool{c.ID: true}
		for c.InReplyToID != nil {
			parent, ok := byID[*c.InReplyToID]
			if !ok || seen[parent.ID] {
				break
			}
			seen[parent.ID] = true
			c = parent
		}
		return c.ID
	}

	index := make(map[int64]int)
	var chains [][]ReviewComment
	for _, c := range comments {
		root := rootOf(c)
		i, ok := index[root]
		if !ok {
			i = len(chains)
			index[root] = i
			chains = append(chains, nil)
		}
		chains[i] = append(chains[i], c)
	}
	return chains
}

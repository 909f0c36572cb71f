package collab

import (
	"encoding/json"
	"sort"
)

// BlockType tags the content kind of a block.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockListItem  BlockType = "list-item"
	BlockCode      BlockType = "code"
	BlockQuote     BlockType = "quote"
	BlockDivider   BlockType = "divider"
	BlockImage     BlockType = "image"
)

// PropLastModified is the properties key holding the unix-milli timestamp of
// the most recent local edit to a block. Absent until the block is edited.
const PropLastModified = "lastModified"

// Properties is the open extension map attached to a block.
type Properties map[string]any

// Block is a node in a document's ordered content tree. Top-level blocks
// sorted by Order (ties broken by ID) are the canonical rendering order.
type Block struct {
	ID         string     `json:"id"`
	Type       BlockType  `json:"type"`
	Content    string     `json:"content"`
	Properties Properties `json:"properties,omitempty"`
	Order      float64    `json:"order"`
	Children   []Block    `json:"children,omitempty"`
}

// LastModified returns the block's last-modified timestamp in unix millis, or
// zero when the block has never been edited locally.
//
// Properties decoded from JSON carry numbers as float64; values set in-process
// are int64. Both are accepted.
func (b Block) LastModified() int64 {
	raw, ok := b.Properties[PropLastModified]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// SetLastModified records the last-modified timestamp on the block.
func (b *Block) SetLastModified(ts int64) {
	if b.Properties == nil {
		b.Properties = Properties{}
	}
	b.Properties[PropLastModified] = ts
}

// SortBlocks re-linearizes blocks in place: Order ascending, ties broken by
// ID for determinism.
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Order != blocks[j].Order {
			return blocks[i].Order < blocks[j].Order
		}
		return blocks[i].ID < blocks[j].ID
	})
}

// FindBlock returns the index of the block with the given id, or -1.
func FindBlock(blocks []Block, id string) int {
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}

func copyBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

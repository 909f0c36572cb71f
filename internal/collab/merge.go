package collab

// Resolution is the outcome of a merge attempt.
type Resolution struct {
	// Resolved reports whether a merged block list was produced.
	Resolved bool
	// Merged holds the merged block list when Resolved is true.
	Merged []Block
	// Unresolved carries the original conflicts when resolution failed; the
	// caller is expected to fall back to unconditionally applying the remote
	// change.
	Unresolved []Conflict
}

// Resolve produces a merged block list for a conflicting remote change.
//
// Dispatch is by change kind: inserts always go through the insertion merge
// (structural conflicts are not expected on insert), updates through the
// field-level update merge, and remote deletes win unconditionally.
//
// Any panic inside the merge logic (malformed payload, unexpected shape) is
// recovered and reported as Resolved == false with the original conflict
// list. Convergence is favored over preserving local edits when merge logic
// itself fails.
func Resolve(remote Change, blocks []Block, conflicts []Conflict) (res Resolution) {
	defer func() {
		if r := recover(); r != nil {
			res = Resolution{Resolved: false, Unresolved: conflicts}
		}
	}()

	switch remote.Kind {
	case ChangeInsert:
		return Resolution{Resolved: true, Merged: mergeInsert(remote.Payload.Blocks, blocks)}
	case ChangeUpdate:
		return Resolution{Resolved: true, Merged: mergeUpdate(remote.Payload.Blocks, blocks)}
	case ChangeDelete:
		return Resolution{Resolved: true, Merged: deleteBlock(blocks, remote.BlockID)}
	default:
		panic("unknown change kind: " + string(remote.Kind))
	}
}

// mergeInsert folds remote blocks into the current list. Blocks whose id is
// already present are skipped, making repeated delivery of the same insert a
// no-op. The working list is re-sorted by order after every batch; this is
// the authoritative re-linearization step.
func mergeInsert(remote []Block, current []Block) []Block {
	working := copyBlocks(current)
	for _, rb := range remote {
		if FindBlock(working, rb.ID) >= 0 {
			continue
		}
		working = append(working, rb)
	}
	SortBlocks(working)
	return working
}

// mergeUpdate overlays remote updates onto the current list. Content is
// remote-wins at field granularity; properties are shallow-merged with remote
// values layered over local ones, except lastModified which takes the max of
// both sides so the watermark never regresses.
func mergeUpdate(remote []Block, current []Block) []Block {
	byID := make(map[string]Block, len(remote))
	for _, rb := range remote {
		byID[rb.ID] = rb
	}

	out := make([]Block, 0, len(current))
	for _, cb := range current {
		rb, ok := byID[cb.ID]
		if !ok {
			out = append(out, cb)
			continue
		}
		merged := cb
		merged.Content = rb.Content
		merged.Properties = mergeProperties(cb.Properties, rb.Properties)
		out = append(out, merged)
	}
	return out
}

func mergeProperties(local, remote Properties) Properties {
	merged := make(Properties, len(local)+len(remote))
	for k, v := range local {
		merged[k] = v
	}
	for k, v := range remote {
		merged[k] = v
	}

	localMod := Block{Properties: local}.LastModified()
	remoteMod := Block{Properties: remote}.LastModified()
	if localMod != 0 || remoteMod != 0 {
		merged[PropLastModified] = max(localMod, remoteMod)
	}
	return merged
}

// deleteBlock removes all blocks with the given id. Deleting a non-existent
// block is a no-op, not an error.
func deleteBlock(blocks []Block, id string) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.ID == id {
			continue
		}
		out = append(out, b)
	}
	return out
}

package collab

// Conflict names a block whose local modification is more recent than an
// incoming remote change.
type Conflict struct {
	BlockID         string
	LocalModified   int64
	RemoteTimestamp int64
}

// Detect compares an incoming remote change against the current block list
// and returns conflict descriptors (possibly empty).
//
// The check is coarse: block granularity, single timestamp, no per-field
// diffing. A block with no lastModified property has never been
// modified locally and never blocks a remote change. A remote insert for a
// block id not present locally never conflicts.
func Detect(remote Change, blocks []Block) []Conflict {
	if remote.BlockID == "" {
		return nil
	}
	i := FindBlock(blocks, remote.BlockID)
	if i < 0 {
		return nil
	}
	local := blocks[i].LastModified()
	if local > remote.Timestamp {
		return []Conflict{{
			BlockID:         remote.BlockID,
			LocalModified:   local,
			RemoteTimestamp: remote.Timestamp,
		}}
	}
	return nil
}

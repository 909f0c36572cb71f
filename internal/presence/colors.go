package presence

import "hash/fnv"

// palette holds the cursor colors assigned to participants. Deterministic
// per user id so a user keeps the same color across rooms and reconnects.
var palette = []string{
	"#e91e63",
	"#9c27b0",
	"#3f51b5",
	"#2196f3",
	"#009688",
	"#4caf50",
	"#ff9800",
	"#ff5722",
	"#795548",
	"#607d8b",
}

// ColorFor returns the deterministic presence color for a user.
func ColorFor(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return palette[h.Sum32()%uint32(len(palette))]
}

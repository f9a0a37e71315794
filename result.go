package bolt

// Counters tallies the write operations a statement performed, parsed from
// the "stats" entry of the completion metadata
type Counters struct {
	NodesCreated         int
	NodesDeleted         int
	RelationshipsCreated int
	RelationshipsDeleted int
	PropertiesSet        int
	LabelsAdded          int
	LabelsRemoved        int
	IndexesAdded         int
	IndexesRemoved       int
	ConstraintsAdded     int
	ConstraintsRemoved   int
	SystemUpdates        int
}

// ContainsUpdates reports whether the statement changed anything
func (c Counters) ContainsUpdates() bool {
	return c.NodesCreated > 0 || c.NodesDeleted > 0 ||
		c.RelationshipsCreated > 0 || c.RelationshipsDeleted > 0 ||
		c.PropertiesSet > 0 || c.LabelsAdded > 0 || c.LabelsRemoved > 0 ||
		c.IndexesAdded > 0 || c.IndexesRemoved > 0 ||
		c.ConstraintsAdded > 0 || c.ConstraintsRemoved > 0 ||
		c.SystemUpdates > 0
}

// Summary describes a completed statement. It is available once the
// statement's record stream has been fully consumed or discarded.
type Summary struct {
	// StatementType is "r", "w", "rw" or "s" as reported by the server
	StatementType string
	Counters      Counters
	// Bookmark is the causal token minted when the statement committed,
	// empty inside an explicit transaction
	Bookmark string
	// TFirst is the milliseconds until the first record was available
	TFirst int64
	// TLast is the milliseconds until the last record was consumed
	TLast int64
	// Metadata is the raw completion metadata of the final SUCCESS
	Metadata map[string]interface{}
}

func newSummary(runMeta, pullMeta map[string]interface{}) *Summary {
	sum := &Summary{Metadata: pullMeta}
	sum.TFirst = metaInt(runMeta, "t_first", "result_available_after")
	sum.TLast = metaInt(pullMeta, "t_last", "result_consumed_after")
	if t, ok := pullMeta["type"].(string); ok {
		sum.StatementType = t
	}
	if b, ok := pullMeta["bookmark"].(string); ok {
		sum.Bookmark = b
	}
	if stats, ok := pullMeta["stats"].(map[string]interface{}); ok {
		sum.Counters = parseCounters(stats)
	}
	return sum
}

// metaInt reads the first present key, names differ between protocol
// versions
func metaInt(meta map[string]interface{}, keys ...string) int64 {
	for _, key := range keys {
		if v, ok := meta[key].(int64); ok {
			return v
		}
	}
	return 0
}

func parseCounters(stats map[string]interface{}) Counters {
	return Counters{
		NodesCreated:         int(metaInt(stats, "nodes-created")),
		NodesDeleted:         int(metaInt(stats, "nodes-deleted")),
		RelationshipsCreated: int(metaInt(stats, "relationships-created")),
		RelationshipsDeleted: int(metaInt(stats, "relationships-deleted")),
		PropertiesSet:        int(metaInt(stats, "properties-set")),
		LabelsAdded:          int(metaInt(stats, "labels-added")),
		LabelsRemoved:        int(metaInt(stats, "labels-removed")),
		IndexesAdded:         int(metaInt(stats, "indexes-added")),
		IndexesRemoved:       int(metaInt(stats, "indexes-removed")),
		ConstraintsAdded:     int(metaInt(stats, "constraints-added")),
		ConstraintsRemoved:   int(metaInt(stats, "constraints-removed")),
		SystemUpdates:        int(metaInt(stats, "system-updates")),
	}
}

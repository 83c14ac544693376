package storage

// Statistics is a summary of store contents the optimizer consults to
// scale its per-position cardinality estimates to the store's actual size, rather than assuming a fixed constant regardless of
// whether the store holds a hundred quads or a hundred billion.
type Statistics struct {
	TotalQuads  uint64
	NamedGraphs uint64
}

// Statistics walks every key of the SPOG index and of the graphs column
// family, giving exact quad and named-graph counts at the cost of one full
// scan of each.
func (s *Store) Statistics() (Statistics, error) {
	snap := s.backend.NewSnapshot()
	defer snap.Discard()

	var stats Statistics

	spogPrefix := prefixKey(cfIndexSPOG, nil)
	quadCursor, err := snap.Scan(spogPrefix, prefixUpperBound(spogPrefix))
	if err != nil {
		return stats, err
	}
	defer quadCursor.Close()
	for quadCursor.Next() {
		stats.TotalQuads++
	}

	graphsPrefix := prefixKey(cfGraphs, nil)
	graphCursor, err := snap.Scan(graphsPrefix, prefixUpperBound(graphsPrefix))
	if err != nil {
		return stats, err
	}
	defer graphCursor.Close()
	for graphCursor.Next() {
		stats.NamedGraphs++
	}

	return stats, nil
}

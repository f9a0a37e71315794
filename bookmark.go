package bolt

// CombineBookmarks merges bookmark sets into one deduplicated set suitable
// for beginning a transaction that must observe all of them. Order within
// the result is the order of first appearance; the server resolves the
// causal ordering.
func CombineBookmarks(sets ...[]string) []string {
	var combined []string
	seen := map[string]struct{}{}
	for _, set := range sets {
		for _, bookmark := range set {
			if bookmark == "" {
				continue
			}
			if _, ok := seen[bookmark]; ok {
				continue
			}
			seen[bookmark] = struct{}{}
			combined = append(combined, bookmark)
		}
	}
	return combined
}

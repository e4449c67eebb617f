package diff

// validateMatchings checks caller-supplied pairs against both trees. Each
// node may be pinned at most once and must belong to its tree. Nothing is
// seeded unless every pair is valid.
func validateMatchings(matchings []Matching, src, tgt *treeIndex) ([][2]int, error) {
	seenSource := make(map[int]struct{}, len(matchings))
	seenTarget := make(map[int]struct{}, len(matchings))
	pairs := make([][2]int, 0, len(matchings))

	for idx, matching := range matchings {
		if matching.Source == nil || matching.Target == nil {
			return nil, &ConfigurationError{Index: idx, Err: ErrNilNode}
		}

		srcID, inSource := src.ids[matching.Source]
		tgtID, inTarget := tgt.ids[matching.Target]

		if !inSource || !inTarget {
			return nil, &ConfigurationError{Index: idx, Err: ErrForeignNode}
		}

		if _, dup := seenSource[srcID]; dup {
			return nil, &ConfigurationError{Index: idx, Err: ErrDuplicateSource}
		}

		if _, dup := seenTarget[tgtID]; dup {
			return nil, &ConfigurationError{Index: idx, Err: ErrDuplicateTarget}
		}

		seenSource[srcID] = struct{}{}
		seenTarget[tgtID] = struct{}{}
		pairs = append(pairs, [2]int{srcID, tgtID})
	}

	return pairs, nil
}

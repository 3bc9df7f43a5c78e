package model

// SubtractRemoved returns features minus removed, leaving the input sets
// untouched.
func SubtractRemoved(features map[FeatureID]bool, removed map[FeatureID]bool) map[FeatureID]bool {
	out := make(map[FeatureID]bool, len(features))
	for f := range features {
		if !removed[f] {
			out[f] = true
		}
	}
	return out
}

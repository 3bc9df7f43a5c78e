package model

// wubrg is the canonical color identity ordering. Any other single letter
// (e.g. "S" for snow, or the colorless sentinel "C") contributes nothing.
const wubrg = "WUBRG"

// MergeIdentity unions a set of per-card identity strings and renders the
// result in canonical WUBRG order. An empty union renders as "C".
func MergeIdentity(identities []string) string {
	present := make(map[byte]bool, 5)
	for _, id := range identities {
		for i := 0; i < len(id); i++ {
			c := id[i]
			switch {
			case c >= 'a' && c <= 'z':
				c -= 'a' - 'A'
			}
			if strchr(wubrg, c) {
				present[c] = true
			}
		}
	}
	out := make([]byte, 0, 5)
	for i := 0; i < len(wubrg); i++ {
		if present[wubrg[i]] {
			out = append(out, wubrg[i])
		}
	}
	if len(out) == 0 {
		return "C"
	}
	return string(out)
}

func strchr(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}

// Package sanitize rewrites a path string into one safe to write on a
// given platform, per spec.md §4.4.
package sanitize

import "strings"

const illegal = `"*:<>?|`

// Path rewrites every illegal character in p for the target platform,
// identified by its path separator. On platforms whose separator is `\`,
// a leading drive-letter colon (e.g. "C:\...") is preserved; any other
// colon in the path becomes ";" rather than "_". The separator character
// itself is never modified.
func Path(p string, separator byte) string {
	driveColonIndex := -1
	if separator == '\\' {
		driveColonIndex = findDriveColon(p)
	}

	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == separator {
			b.WriteByte(c)
			continue
		}
		if c == ':' {
			switch {
			case i == driveColonIndex:
				b.WriteByte(c)
			case separator == '\\':
				b.WriteByte(';')
			default:
				b.WriteByte('_')
			}
			continue
		}
		if strings.IndexByte(illegal, c) >= 0 {
			b.WriteByte('_')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// findDriveColon returns the index of the colon in a leading drive-letter
// context ("C:" at the very start of the path), or -1 if none.
func findDriveColon(p string) int {
	if len(p) >= 2 && isASCIILetter(p[0]) && p[1] == ':' {
		return 1
	}
	return -1
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

package probe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z.]+)?(?:\+[0-9A-Za-z.]+)?`)

// ExtractVersion pulls the first dotted version out of a probe line:
// "git version 2.43.0" gives "2.43.0" and "go version go1.22.3 linux/amd64"
// gives "1.22.3". Lines without one are returned trimmed, unchanged.
func ExtractVersion(line string) string {
	line = strings.TrimSpace(line)
	if v := versionPattern.FindString(line); v != "" {
		return v
	}
	return line
}

// Compare orders two versions: -1 if a < b, 0 if equal, 1 if a > b. It
// tolerates a "v" prefix and two-part versions. Identical strings are equal
// even when they are not semver.
func Compare(a, b string) (int, error) {
	if a == b {
		return 0, nil
	}
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return semver.NewVersion(version)
}

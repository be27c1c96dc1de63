package convert

import (
	"fmt"
	"regexp"
	"strconv"

	"pyast/internal/cst"
)

var versionPattern = regexp.MustCompile(`^(\d+)(\.(\d+)(\.(\d+))?)?$`)

// supportedMajor is the only Python major version the converter accepts.
const supportedMajor = 3

// Version is a parsed Python language version. Missing components are zero.
type Version struct {
	Major int
	Minor int
	Patch int

	parts int // components present in the source string
}

func (v Version) String() string {
	switch v.parts {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v is major.minor or newer. A bare major version
// stands for every release of that major version.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.parts == 1 || v.Minor >= minor
}

// ParseVersion parses a version string such as "3", "3.12" or "3.12.1".
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q is not a version", ErrUnsupportedVersion, s)
	}
	v := Version{parts: 1}
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, s, err)
	}
	if m[3] != "" {
		if v.Minor, err = strconv.Atoi(m[3]); err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, s, err)
		}
		v.parts = 2
	}
	if m[5] != "" {
		if v.Patch, err = strconv.Atoi(m[5]); err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, s, err)
		}
		v.parts = 3
	}
	if v.Major != supportedMajor {
		return Version{}, fmt.Errorf("%w: %q, only python %d is supported", ErrUnsupportedVersion, s, supportedMajor)
	}
	return v, nil
}

// minimumVersions lists productions that only exist from a given minor
// version of Python 3 on. A bare major version ("3") accepts everything.
var minimumVersions = map[cst.Kind]struct {
	minor int
	what  string
}{
	cst.MatchStatement:   {10, "match statement"},
	cst.ExceptStarBlock:  {11, "except* clause"},
	cst.TypeAlias:        {12, "type alias statement"},
	cst.TypeParams:       {12, "type parameter list"},
	cst.TypeParamDefault: {13, "type parameter default"},
}

func (c *Converter) checkAvailable(n *cst.Node) error {
	req, ok := minimumVersions[n.Kind]
	if !ok || c.version.AtLeast(supportedMajor, req.minor) {
		return nil
	}
	return fmt.Errorf("%w: %s requires python 3.%d, converting for %s",
		ErrUnsupportedVersion, req.what, req.minor, c.version)
}

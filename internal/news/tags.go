package news

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	releaseTagRe = regexp.MustCompile(`(?i)^php-(\d\.\d\.(?:\d\d?|0(?:alpha|beta|rc)\d))$`)
	versionRe    = regexp.MustCompile(`^(\d)\.(\d)(?:\.(\d\d?)\S*)?$`)
	versionIDRe  = regexp.MustCompile(`^(\d)(\d\d)(\d\d)$`)
)

// IsReleaseTag reports whether tag names a php-src release, such as
// "php-8.3.9" or "php-8.4.0RC1".
func IsReleaseTag(tag string) bool {
	return releaseTagRe.MatchString(tag)
}

// TagVersion returns the version part of a release tag.
func TagVersion(tag string) (string, bool) {
	m := releaseTagRe.FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FilterReleaseTags returns the release tags in their original order.
func FilterReleaseTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if IsReleaseTag(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortTags orders release tags newest first by numeric version. Pre-releases
// of a patch version sort below the final release.
func SortTags(tags []string) {
	sort.SliceStable(tags, func(i, j int) bool {
		return compareTags(tags[i], tags[j]) > 0
	})
}

func compareTags(a, b string) int {
	va, _ := TagVersion(a)
	vb, _ := TagVersion(b)
	ka, kb := versionKey(va), versionKey(vb)
	for i := range ka {
		if ka[i] != kb[i] {
			if ka[i] < kb[i] {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(strings.ToLower(va), strings.ToLower(vb))
}

// versionKey maps "8.4.0RC1" to {8, 4, 0, 2, 1}. The fourth field ranks
// alpha < beta < RC < final.
func versionKey(v string) [5]int {
	var key [5]int
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return key
	}
	key[0], _ = strconv.Atoi(parts[0])
	key[1], _ = strconv.Atoi(parts[1])

	patch := strings.ToLower(parts[2])
	key[3] = 3
	for rank, suffix := range []string{"alpha", "beta", "rc"} {
		if idx := strings.Index(patch, suffix); idx >= 0 {
			key[3] = rank
			key[4], _ = strconv.Atoi(patch[idx+len(suffix):])
			patch = patch[:idx]
			break
		}
	}
	key[2], _ = strconv.Atoi(patch)
	return key
}

// Branch returns the php-src branch carrying the NEWS file for a version.
// It accepts "8.3", "8.3.12", "8.4.0RC1", the integer form "80312", and
// "master".
func Branch(version string) (string, error) {
	version = strings.TrimSpace(version)
	if version == "" || strings.EqualFold(version, "master") {
		return "master", nil
	}
	if m := versionIDRe.FindStringSubmatch(version); m != nil {
		minor, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("PHP-%s.%d", m[1], minor), nil
	}
	if m := versionRe.FindStringSubmatch(version); m != nil {
		return "PHP-" + m[1] + "." + m[2], nil
	}
	return "", fmt.Errorf("cannot derive branch from version %q", version)
}

package news

// Release returns a copy of the release with the given version.
// The error unwraps to ErrReleaseNotFound when the version is absent and to
// ErrReleaseInvalid when it is present but holds no entries.
func (n *News) Release(version string) (*Release, error) {
	idx, ok := n.lookup(version)
	if !ok {
		return nil, &ReleaseError{
			Err:               ErrReleaseNotFound,
			Version:           version,
			AvailableVersions: n.Versions(),
		}
	}

	r := n.Releases[idx]
	if len(r.Subsystems) == 0 || r.IsEmpty() {
		return nil, &ReleaseError{Err: ErrReleaseInvalid, Version: version}
	}
	return r.clone(), nil
}

// Versions returns the release versions in document order.
func (n *News) Versions() []string {
	versions := make([]string, len(n.Releases))
	for i, r := range n.Releases {
		versions[i] = r.Version
	}
	return versions
}

// Latest returns the first release in the document, or nil when empty.
func (n *News) Latest() *Release {
	if len(n.Releases) == 0 {
		return nil
	}
	return n.Releases[0].clone()
}

// LatestReleased returns the first release with a concrete date, or nil.
func (n *News) LatestReleased() *Release {
	for _, r := range n.Releases {
		if !r.IsUnreleased() {
			return r.clone()
		}
	}
	return nil
}

func (n *News) lookup(version string) (int, bool) {
	if n.index != nil {
		idx, ok := n.index[version]
		return idx, ok
	}
	for i, r := range n.Releases {
		if r.Version == version {
			return i, true
		}
	}
	return 0, false
}

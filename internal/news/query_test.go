package news

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNews_Release(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(sampleNews)
	require.NoError(t, err)

	tests := map[string]struct {
		version string
		err     error
		entries int
	}{
		"unreleased":   {version: "8.3.10", entries: 1},
		"released":     {version: "8.3.9", entries: 3},
		"missing":      {version: "8.2.0", err: ErrReleaseNotFound},
		"empty string": {version: "", err: ErrReleaseNotFound},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := doc.Release(tt.version)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, r.Version)
			assert.Equal(t, tt.entries, r.EntryCount())
		})
	}
}

func TestNews_ReleaseNotFoundListsVersions(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(sampleNews)
	require.NoError(t, err)

	_, err = doc.Release("7.4.0")
	var re *ReleaseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, []string{"8.3.10", "8.3.9"}, re.AvailableVersions)
	assert.Equal(t, `version "7.4.0" not found (available: 8.3.10, 8.3.9)`, err.Error())
}

func TestNews_ReleaseInvalid(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"no subsystems":        {"04 Jul 2024, PHP 8.3.9"},
		"subsystem no entries": {"04 Jul 2024, PHP 8.3.9", "- Core:"},
	}

	for name, lines := range tests {
		lines := lines
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse(lines)
			require.NoError(t, err)
			assert.Equal(t, []string{"8.3.9"}, doc.Versions())

			_, err = doc.Release("8.3.9")
			require.ErrorIs(t, err, ErrReleaseInvalid)
			assert.NotErrorIs(t, err, ErrReleaseNotFound)
			assert.Equal(t, `version "8.3.9": release has no entries`, err.Error())
		})
	}
}

func TestNews_ReleaseReturnsCopy(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(sampleNews)
	require.NoError(t, err)

	r, err := doc.Release("8.3.9")
	require.NoError(t, err)
	r.Subsystems[0].Entries[0].Text = "changed"
	*r.Date = r.Date.AddDate(1, 0, 0)

	again, err := doc.Release("8.3.9")
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again.Subsystems[0].Entries[0].Text)
	assert.Equal(t, 2024, again.Date.Year())
}

func TestNews_LatestAndLatestReleased(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(sampleNews)
	require.NoError(t, err)

	assert.Equal(t, "8.3.10", doc.Latest().Version)
	assert.True(t, doc.Latest().IsUnreleased())
	assert.Equal(t, "8.3.9", doc.LatestReleased().Version)

	empty := &News{}
	assert.Nil(t, empty.Latest())
	assert.Nil(t, empty.LatestReleased())
	assert.Empty(t, empty.Versions())
}

func TestNews_LookupAfterDecode(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(sampleNews)
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded News
	require.NoError(t, json.Unmarshal(data, &decoded))
	r, err := decoded.Release("8.3.9")
	require.NoError(t, err)
	assert.Equal(t, "8.3.9", r.Version)
	_, err = decoded.Release("8.3.8")
	assert.ErrorIs(t, err, ErrReleaseNotFound)
}

package commits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/phpwatch/commitlog/internal/enhancer"
)

type recordingEnhancer struct {
	hashes []string
}

func (r *recordingEnhancer) EnhanceCommit(subject, shortHash string) string {
	r.hashes = append(r.hashes, shortHash)
	return subject + "!"
}

func sampleCommits() []Commit {
	return []Commit{
		Split("Fix GH-14702: crash in DOMDocument::xinclude()", "nielsdos", "aaaaaaaaaa1111111111"),
		Split("Merge branch 'PHP-8.3'", "nielsdos", "bbbbbbbbbb"),
		Split("Fix typo in run-tests.php", "Dev10", "cccccccccc2222"),
		Split("Update NEWS for PHP 8.3.10", "release-bot", "dddddddddd"),
		Split("Add zend_string_equals_cstr() (#1234)", "dev2", "eeeeeeeeee"),
		Split("Fix leak in ext/dom", "Niels Dossche", "ffffffffff"),
	}
}

func TestFormatter_Format(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	rec := &recordingEnhancer{}
	f := NewFormatter(rec,
		WithAuthorReplacements(map[string]string{"nielsdos": "Niels Dossche"}),
		WithLogger(zap.New(core)))

	log := f.Format(sampleCommits())

	require.Len(t, log.Entries, 4)
	assert.Equal(t, 2, log.Skipped)
	assert.Equal(t, 2, logs.FilterMessage("skipping commit").Len())
	assert.Equal(t, []string{"aaaaaaaaaa", "cccccccccc", "eeeeeeeeee", "ffffffffff"}, rec.hashes)

	assert.Equal(t, "Fix GH-14702: crash in DOMDocument::xinclude()!", log.Entries[0].Formatted)
	assert.Equal(t, "Niels Dossche", log.Entries[0].DisplayAuthor)
	assert.Equal(t, "nielsdos", log.Entries[0].Author)
	assert.Equal(t, "Dev10", log.Entries[1].DisplayAuthor)
}

func TestLog_ByAuthor(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, WithAuthorReplacements(map[string]string{"nielsdos": "Niels Dossche"}))
	groups := f.Format(sampleCommits()).ByAuthor()

	var authors []string
	for _, g := range groups {
		authors = append(authors, g.Author)
	}
	assert.Equal(t, []string{"dev2", "Dev10", "Niels Dossche"}, authors)

	niels := groups[2]
	require.Len(t, niels.Entries, 2)
	assert.Equal(t, "Fix GH-14702: crash in DOMDocument::xinclude()", niels.Entries[0].Formatted)
	assert.Equal(t, "Fix leak in ext/dom", niels.Entries[1].Formatted)
}

func TestLog_Markdown(t *testing.T) {
	t.Parallel()

	f := NewFormatter(enhancer.Default())
	log := f.Format([]Commit{
		Split("Fix typo in run-tests.php", "Dev10", "cccccccccc2222"),
		Split("Add zend_string_equals_cstr() (#1234)", "dev2", "eeeeeeeeee"),
		Split("Allow <b> & <i> tags", "dev2", "0123456789"),
	})

	assert.Equal(t,
		" - Fix typo in `run-tests.php` in [cccccccccc](https://github.com/php/php-src/commit/cccccccccc) by Dev10\n"+
			" - Add `zend_string_equals_cstr()` in [GH-1234](https://github.com/php/php-src/pull/1234) by dev2\n"+
			" - Allow &lt;b&gt; &amp; &lt;i&gt; tags in [0123456789](https://github.com/php/php-src/commit/0123456789) by dev2\n",
		log.Markdown(false))

	assert.Equal(t,
		"### dev2\n"+
			" - Add `zend_string_equals_cstr()` in [GH-1234](https://github.com/php/php-src/pull/1234)\n"+
			" - Allow &lt;b&gt; &amp; &lt;i&gt; tags in [0123456789](https://github.com/php/php-src/commit/0123456789)\n"+
			"\n"+
			"### Dev10\n"+
			" - Fix typo in `run-tests.php` in [cccccccccc](https://github.com/php/php-src/commit/cccccccccc)\n"+
			"\n",
		log.Markdown(true))
}

func TestLog_Empty(t *testing.T) {
	t.Parallel()

	log := NewFormatter(nil).Format(nil)
	assert.Empty(t, log.Entries)
	assert.Empty(t, log.ByAuthor())
	assert.Equal(t, "", log.Markdown(true))
	assert.Equal(t, "", log.Markdown(false))
}

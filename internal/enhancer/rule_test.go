package enhancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeRules_Order(t *testing.T) {
	t.Parallel()

	var names []string
	for _, r := range CodeRules() {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		"prefixed-call",
		"prefixed-symbol",
		"module-path",
		"file-name",
		"variable",
		"attribute",
		"static-call",
		"class-constant",
		"static-member",
		"dunder",
		"qualified-type",
		"snake-call",
		"function-family",
		"cli-flag",
		"constant",
		"xleak",
	}, names)
}

func TestCodeRules_ReturnsCopy(t *testing.T) {
	t.Parallel()

	rules := CodeRules()
	rules[0].Name = "changed"
	assert.Equal(t, "prefixed-call", CodeRules()[0].Name)
}

func TestCodeRules_Individually(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		rule     string
		matches  []string
		rejected []string
	}{
		"prefixed-call": {
			rule:     "prefixed-call",
			matches:  []string{"zend_hash_find()", "PHP_INFO_PRINT()"},
			rejected: []string{"`zend_hash_find()`", "zend_hash_find"},
		},
		"prefixed-symbol": {
			rule:     "prefixed-symbol",
			matches:  []string{"ZEND_ACC_FINAL", "php_stream*", "PHP_OS_FAMILY"},
			rejected: []string{"TEST_PHP_EXECUTABLE", "`ZEND_ACC_FINAL`", "php_version()"},
		},
		"module-path": {
			rule:     "module-path",
			matches:  []string{"ext/standard", "Zend/zend_API.c", "sapi/fpm"},
			rejected: []string{"https://example.com/ext/standard", "ext/", "`ext/dom`"},
		},
		"file-name": {
			rule:     "file-name",
			matches:  []string{"run-tests.php", "bug81145.phpt", "config.m4", "zend.h"},
			rejected: []string{"example.com", "README.md", "/tmp/foo.php"},
		},
		"variable": {
			rule:     "variable",
			matches:  []string{"$flags", "$_SERVER"},
			rejected: []string{"`$flags`", "a$b", "$1"},
		},
		"attribute": {
			rule:     "attribute",
			matches:  []string{"#[Override]", `#[\SensitiveParameter]`},
			rejected: []string{"#[override]", "`#[Override]`"},
		},
		"static-call": {
			rule:     "static-call",
			matches:  []string{"Foo::bar()", `Dom\Element::get()`},
			rejected: []string{"Foo::bar", "foo::bar()"},
		},
		"class-constant": {
			rule:     "class-constant",
			matches:  []string{"DateTimeInterface::ATOM", "PDO::PARAM_INT"},
			rejected: []string{"Suit::Hearts", "Foo::BAR()"},
		},
		"static-member": {
			rule:     "static-member",
			matches:  []string{"Suit::Hearts", "Foo::$bar", "Foo::class"},
			rejected: []string{"Foo::bar(", "`Foo::$bar`"},
		},
		"dunder": {
			rule:     "dunder",
			matches:  []string{"__construct", "__toString()", "__CLASS__"},
			rejected: []string{"foo__bar", "__", "`__get`"},
		},
		"qualified-type": {
			rule:     "qualified-type",
			matches:  []string{`Random\Randomizer`, `\Dom\Node`},
			rejected: []string{`Random\Engine\Mt19937`, "Random"},
		},
		"snake-call": {
			rule:     "snake-call",
			matches:  []string{"password_hash()", "get_defined_functions()"},
			rejected: []string{"strlen()", "$obj->get_name()", "password_hash"},
		},
		"function-family": {
			rule:     "function-family",
			matches:  []string{"array_map", "mb_str_pad", "stream_select", "openssl_encrypt"},
			rejected: []string{"array_map(", "my_array_map", "arrayMap"},
		},
		"cli-flag": {
			rule:     "cli-flag",
			matches:  []string{"--enable-debug", "--with-openssl"},
			rejected: []string{"---x", "a--b", "-f"},
		},
		"constant": {
			rule:     "constant",
			matches:  []string{"E_ALL", "HASH_KEY_IS_*", "HASH_KEY_IS_"},
			rejected: []string{"HASH_KEY_IS_*f", "CONST", "E_ALL(", "$E_ALL"},
		},
		"xleak": {
			rule:     "xleak",
			matches:  []string{"xleak", "XLEAK"},
			rejected: []string{"xleaks", "`xleak`"},
		},
	}

	byName := make(map[string]Rule)
	for _, r := range CodeRules() {
		byName[r.Name] = r
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, ok := byName[tt.rule]
			require.True(t, ok, "rule %q not found", tt.rule)

			for _, m := range tt.matches {
				assert.Equal(t, "`"+m+"`", r.Apply(m), "expected %q to be quoted", m)
			}
			for _, m := range tt.rejected {
				assert.False(t, r.matches(m), "expected %q to be left alone", m)
			}
		})
	}
}

func TestRule_SpanGuard(t *testing.T) {
	t.Parallel()

	r := NewRule("word", `\bfoo\b`, "`$0`")

	tests := map[string]struct {
		input    string
		expected string
	}{
		"bare":        {input: "a foo b", expected: "a `foo` b"},
		"inline code": {input: "a `x foo y` b", expected: "a `x foo y` b"},
		"link label":  {input: "see [foo](https://example.com)", expected: "see [foo](https://example.com)"},
		"link target": {input: "see [x](https://foo.example.com)", expected: "see [x](https://foo.example.com)"},
		"mixed":       {input: "`foo` and foo", expected: "`foo` and `foo`"},
		"multibyte":   {input: "über `foo` é foo", expected: "über `foo` é `foo`"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, r.Apply(tt.input))
		})
	}
}

func TestRule_Filter(t *testing.T) {
	t.Parallel()

	r := NewRule("num", `\d+`, "<$0>")
	r.Filter = func(groups []string) bool { return groups[0] != "2" }

	assert.Equal(t, "<1> 2 <3>", r.Apply("1 2 3"))
	assert.True(t, r.matches("1"))
	assert.False(t, r.matches("2"))
}

func TestExpand(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		template string
		groups   []string
		expected string
	}{
		"whole match":   {template: "[$0]", groups: []string{"x"}, expected: "[x]"},
		"groups":        {template: "$2-$1", groups: []string{"ab", "a", "b"}, expected: "b-a"},
		"no dollar":     {template: "plain", groups: []string{"x"}, expected: "plain"},
		"missing group": {template: "$1", groups: []string{"x"}, expected: "$1"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, expand(tt.template, tt.groups))
		})
	}
}

package enhancer

// codeTemplate wraps the whole match in backticks.
const codeTemplate = "`$0`"

// \x60 is a backtick. Every pattern refuses to start or end next to one so
// already quoted tokens are left alone even without the span guard.
var codeRules = []Rule{
	// zend_parse_parameters(), php_info_print_table_start()
	NewRule("prefixed-call",
		`(?i)(?<![\x60\w])(?:zend|php)_[a-z_]+\(\)(?!\x60)`, codeTemplate),
	// ZEND_ACC_FINAL, php_stream_context*, PHP_OS_FAMILY
	NewRule("prefixed-symbol",
		`(?i)(?<![\x60\w])(?:zend|php)_[a-z\d_]+\*?(?![\x60\w.(*])`, codeTemplate),
	// ext/standard, Zend/zend_API.c, sapi/fpm/fpm_conf.c
	NewRule("module-path",
		`(?<![\x60\w/.\-])(?:ext|Zend|main|sapi|TSRM|win32|scripts|build|pear)/[\w.\-/]*\w(?![\x60\w/])`, codeTemplate),
	// run-tests.php, bug81145.phpt, basic_functions.stub.php, config.m4
	NewRule("file-name",
		`(?<![\x60\w/.\-$])[a-z][a-z\d_\-]+(?:\.stubs?)?\.(?:phpt?|c|h|y|m4|w32)(?![\x60\w.?/])`, codeTemplate),
	// $exclude_disabled
	NewRule("variable",
		`(?<![\x60\w$\\])\$[A-Za-z_][A-Za-z\d_]*(?![\x60\w])`, codeTemplate),
	// #[\Override], #[SensitiveParameter]
	NewRule("attribute",
		`(?<![\x60\w])#\[\\?[A-Z][\w\\]*\](?![\x60(])`, codeTemplate),
	// DateTime::createFromFormat(), Dom\HTMLDocument::createFromString()
	NewRule("static-call",
		`(?<![\x60\w\\$])(?:[A-Z][A-Za-z\d_]*\\)*[A-Z][A-Za-z\d_]*::[A-Za-z_][A-Za-z\d_]*\(\)(?![\x60/])`, codeTemplate),
	// DateTimeInterface::RFC7231
	NewRule("class-constant",
		`(?<![\x60\w\\$])(?:[A-Z][A-Za-z\d_]*\\)*[A-Z][A-Za-z\d_]*::[A-Z][A-Z\d_]*(?![\x60\w/(])`, codeTemplate),
	// ReflectionProperty::$name, Suit::Hearts
	NewRule("static-member",
		`(?<![\x60\w\\$])(?:[A-Z][A-Za-z\d_]*\\)*[A-Z][A-Za-z\d_]*::\$?[A-Za-z_][A-Za-z\d_]*(?![\x60\w/(])`, codeTemplate),
	// __debugInfo(), __construct, __CLASS__
	NewRule("dunder",
		`(?<![\x60\w])__[A-Za-z][A-Za-z\d]*(?:__|\(\))?(?![\x60\w(])`, codeTemplate),
	// Random\Randomizer, \Dom\Element
	NewRule("qualified-type",
		`(?<![\x60\w\\])\\?[A-Z][A-Za-z\d]*\\[A-Z][A-Za-z\d]*(?![\x60\w\\])`, codeTemplate),
	// password_hash(), get_defined_functions()
	NewRule("snake-call",
		`(?<![\x60\w$:>\\])[a-z][a-z\d]*_[a-z\d_]*[a-z\d]\(\)(?![\x60/])`, codeTemplate),
	// array_map, mb_str_pad, stream_select
	NewRule("function-family",
		`(?<![\x60\w$:>\\])(?:array|curl|ftp|hash|json|ldap|mb|open|openssl|pcntl|posix|preg|sodium|str|stream)_[a-z_]+\d?(?![\x60\w/(])`, codeTemplate),
	// --enable-debug, --with-openssl
	NewRule("cli-flag",
		`(?<![\x60\w\-])--[a-z][a-z\d]*(?:-[a-z\d]+)*(?![\x60\w\-])`, codeTemplate),
	// E_ALL, TEST_PHP_EXECUTABLE, HASH_KEY_IS_*, HASH_KEY_IS_
	NewRule("constant",
		`(?<![\x60\w$\\:])[A-Z][A-Z\d]*(?:_[A-Z\d]+)+_?\*?(?![\x60\w*(])`, codeTemplate),
	NewRule("xleak",
		`(?i)(?<![\x60\w])xleak(?![\x60\w/])`, codeTemplate),
}

// CodeRules returns the code quoting rules in application order.
func CodeRules() []Rule {
	rules := make([]Rule, len(codeRules))
	copy(rules, codeRules)
	return rules
}

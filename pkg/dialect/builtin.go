package dialect

// builtinANSI is deliberately permissive: scripts of unknown origin are the
// common case, so it accepts every quoting style that cannot be mistaken for
// something else and leaves # to T-SQL style temp table names.
var builtinANSI = NewDialect("ansi").
	Backticks().
	Brackets().
	DollarQuoted().
	Build()

var builtinPostgres = NewDialect("postgres").
	DollarQuoted().
	Reserved("RETURNING", "LATERAL").
	Build()

var builtinMySQL = NewDialect("mysql").
	Backticks().
	HashLineComments().
	BackslashEscaped().
	Reserved("STRAIGHT_JOIN").
	Build()

var builtinTSQL = NewDialect("tsql").
	Brackets().
	Reserved("APPLY", "OUTPUT", "TOP", "OPTION").
	Build()

func init() {
	Register(builtinANSI)
	Register(builtinPostgres)
	Register(builtinMySQL)
	Register(builtinTSQL)
	SetDefault(builtinANSI)
}

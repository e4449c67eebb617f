// Package render turns expression trees into SQL text for a target dialect.
// Rendering is used for diagnostics and similarity scoring only; it never
// feeds back into matching.
package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDialect is returned for dialect names the renderer does not know.
var ErrUnknownDialect = errors.New("unknown dialect")

// Dialect identifies a SQL dialect.
type Dialect string

// Supported dialects. DialectANSI is the zero value.
const (
	DialectANSI     Dialect = ""
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectBigQuery Dialect = "bigquery"
	DialectSQLite   Dialect = "sqlite"
	DialectOracle   Dialect = "oracle"
	DialectDuckDB   Dialect = "duckdb"
)

// String returns the dialect name, "ansi" for the zero value.
func (dialect Dialect) String() string {
	if dialect == DialectANSI {
		return "ansi"
	}

	return string(dialect)
}

// Dialects lists every supported dialect.
func Dialects() []Dialect {
	return []Dialect{
		DialectANSI, DialectPostgres, DialectMySQL, DialectBigQuery,
		DialectSQLite, DialectOracle, DialectDuckDB,
	}
}

// ParseDialect resolves a case-insensitive dialect name. The empty string
// and "ansi" both select DialectANSI.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ansi":
		return DialectANSI, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	case "bigquery":
		return DialectBigQuery, nil
	case "sqlite":
		return DialectSQLite, nil
	case "oracle":
		return DialectOracle, nil
	case "duckdb":
		return DialectDuckDB, nil
	default:
		return DialectANSI, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// traits describes how a dialect spells the constructs that vary.
type traits struct {
	quote           byte
	lockingReads    bool
	shareLocks      bool
	keepWindows     bool
	lambdas         bool
	fetchFirst      bool
	concatAsOperand bool
}

func (dialect Dialect) traits() traits {
	switch dialect {
	case DialectPostgres:
		return traits{quote: '"', lockingReads: true, shareLocks: true}
	case DialectMySQL:
		return traits{quote: '`', lockingReads: true, shareLocks: true}
	case DialectBigQuery:
		return traits{quote: '`'}
	case DialectSQLite:
		return traits{quote: '"', concatAsOperand: true}
	case DialectOracle:
		return traits{quote: '"', lockingReads: true, keepWindows: true, fetchFirst: true}
	case DialectDuckDB:
		return traits{quote: '"', lambdas: true}
	default:
		return traits{quote: '"', lockingReads: true, shareLocks: true, keepWindows: true, lambdas: true}
	}
}

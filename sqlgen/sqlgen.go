// Package sqlgen renders the DDL statements that register plugin entry
// points with the database: CREATE FUNCTION for wrapped functions and
// CREATE FOREIGN DATA WRAPPER for foreign tables.
package sqlgen

import (
	"fmt"
	"strings"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/errors"
)

// Arg describes one declared function argument. Optional arguments accept
// SQL null; they correspond to pointer-typed parameters on the Go side.
type Arg struct {
	Name     string
	Type     string
	Optional bool
}

// Function describes one wrapped function to declare.
type Function struct {
	Name    string
	Args    []Arg
	Returns string

	// Library is the shared-object path the loader resolves, Symbol the
	// exported entry point inside it.
	Library string
	Symbol  string
}

// CreateFunction renders the CREATE FUNCTION statement for f.
//
// Functions whose arguments are all required are declared STRICT: the
// executor then short-circuits null inputs to a null result and the wrapped
// function never observes a null argument. Functions whose arguments are
// all optional handle nulls themselves and are declared without STRICT.
// Mixing the two is rejected, because STRICT is all-or-nothing and a
// non-STRICT declaration would deliver nulls to required arguments.
func CreateFunction(f Function) (string, error) {
	if f.Name == "" {
		return "", errors.InvalidInput(errors.PhasePlan, "function name is empty")
	}
	if f.Symbol == "" {
		f.Symbol = f.Name
	}

	optional := 0
	for _, a := range f.Args {
		if a.Optional {
			optional++
		}
	}
	if optional != 0 && optional != len(f.Args) {
		return "", errors.InvalidInput(errors.PhasePlan,
			fmt.Sprintf("function %q mixes optional and required arguments", f.Name))
	}

	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		if a.Name == "" {
			args[i] = a.Type
			continue
		}
		args[i] = a.Name + " " + a.Type
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE FUNCTION %s(%s)", f.Name, strings.Join(args, ", "))
	ret := f.Returns
	if ret == "" {
		ret = "void"
	}
	fmt.Fprintf(&b, " RETURNS %s", ret)
	fmt.Fprintf(&b, " AS '%s', '%s' LANGUAGE C", f.Library, f.Symbol)
	if optional == 0 && len(f.Args) > 0 {
		b.WriteString(" STRICT")
	}
	b.WriteByte(';')
	return b.String(), nil
}

// CreateForeignDataWrapper renders the handler-function declaration and the
// wrapper declaration binding a foreign data wrapper name to it.
func CreateForeignDataWrapper(name, library, symbol string) (string, error) {
	if name == "" {
		return "", errors.InvalidInput(errors.PhasePlan, "wrapper name is empty")
	}
	if symbol == "" {
		symbol = name + "_handler"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE FUNCTION %s_handler() RETURNS fdw_handler AS '%s', '%s' LANGUAGE C;\n",
		name, library, symbol)
	fmt.Fprintf(&b, "CREATE FOREIGN DATA WRAPPER %s HANDLER %s_handler;", name, name)
	return b.String(), nil
}

// TypeName maps a well-known type identifier to its SQL spelling.
func TypeName(oid pgruntime.Oid) (string, bool) {
	switch oid {
	case pgruntime.OidBool:
		return "boolean", true
	case pgruntime.OidBytea:
		return "bytea", true
	case pgruntime.OidInt8:
		return "bigint", true
	case pgruntime.OidInt2:
		return "smallint", true
	case pgruntime.OidInt4:
		return "integer", true
	case pgruntime.OidText:
		return "text", true
	case pgruntime.OidFloat4:
		return "real", true
	case pgruntime.OidFloat8:
		return "double precision", true
	}
	return "", false
}

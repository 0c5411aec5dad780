package main

import (
	"flag"
	"fmt"
	"os"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/examples/kvtable"
	"github.com/wippyai/pg-runtime/examples/memtable"
	"github.com/wippyai/pg-runtime/fdw"
	"github.com/wippyai/pg-runtime/hosttest"
)

func main() {
	var (
		dbPath      = flag.String("db", "", "Bolt database path (in-memory table when empty)")
		bucket      = flag.String("bucket", "rows", "Bolt bucket name")
		list        = flag.Bool("list", false, "Scan once, print the rows and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	engine := hosttest.New()
	rel, routine := setupTable(engine, *dbPath, *bucket)

	if *interactive {
		if err := runInteractive(engine, rel, routine); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if *list {
		if err := printRows(engine, rel, routine); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintln(os.Stderr, "Usage: fdwshell -list [-db <path> -bucket <name>]")
	fmt.Fprintln(os.Stderr, "       fdwshell -i     (interactive mode)")
	os.Exit(1)
}

func setupTable(engine *hosttest.Engine, dbPath, bucket string) (pgruntime.RelID, *fdw.Routine) {
	if dbPath != "" {
		rel := engine.CreateRelation("kv", kvtable.Attrs(), nil, map[string]string{
			"path":   dbPath,
			"bucket": bucket,
		})
		return rel, fdw.New("kvtable", kvtable.Table{}).Routine()
	}

	table := memtable.NewTable(
		memtable.Record{ID: 1, Value: "first"},
		memtable.Record{ID: 2, Value: "second"},
		memtable.Record{ID: 3, Value: "third"},
	)
	rel := engine.CreateRelation("mem", memtable.Attrs(), nil, nil)
	return rel, fdw.New("memtable", table).Routine()
}

func printRows(engine *hosttest.Engine, rel pgruntime.RelID, routine *fdw.Routine) error {
	rows, err := scanRows(engine, rel, routine)
	if err != nil {
		return err
	}
	attrs := engine.RelationAttrs(rel)
	for _, a := range attrs {
		fmt.Printf("%-12s", a.Name)
	}
	fmt.Println()
	for _, r := range rows {
		for _, cell := range r {
			fmt.Printf("%-12s", cell)
		}
		fmt.Println()
	}
	fmt.Printf("(%d rows)\n", len(rows))
	return nil
}

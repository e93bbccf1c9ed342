package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	gordf "github.com/iand/gordf"
	"github.com/pkg/errors"

	"github.com/aleksaelezovic/turtle/internal/encoding"
	"github.com/aleksaelezovic/turtle/internal/interop"
	"github.com/aleksaelezovic/turtle/internal/loader"
	"github.com/aleksaelezovic/turtle/internal/server"
	"github.com/aleksaelezovic/turtle/internal/storage"
	"github.com/aleksaelezovic/turtle/pkg/iri"
	"github.com/aleksaelezovic/turtle/pkg/rdf"
	"github.com/aleksaelezovic/turtle/pkg/store"
)

var (
	iriColor     = color.New(color.FgBlue)
	blankColor   = color.New(color.FgYellow)
	literalColor = color.New(color.FgGreen)
)

func usage() {
	fmt.Println("Usage: turtle <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  parse <file> [base]           - Parse a .ttl or .nt file and print sorted N-Triples")
	fmt.Println("  resolve <ref> <base>          - Resolve an IRI reference against a base IRI")
	fmt.Println("  escape <s> [mode]             - Percent-encode s (iri, uri, uri-strict, iri-fix-percent)")
	fmt.Println("  load <db> <file>...           - Load files into a Badger database")
	fmt.Println("  count <db>                    - Count the triples in a database")
	fmt.Println("  match <db> [s] [p] [o]        - Print stored triples matching a pattern; ? is a wildcard")
	fmt.Println("  gordf <file> [base]           - Parse a file and print it through the gordf term model")
	fmt.Println("  serve <db> [addr]             - Serve uploads and pattern queries over HTTP (default: localhost:8080)")
	fmt.Println()
	fmt.Println("When TURTLE_DB is set the <db> argument is omitted. TURTLE_BASE sets the default base IRI.")
	fmt.Println("Settings may also come from a .env file (.env.<TURTLE_ENV> when TURTLE_ENV is set).")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	command, args := os.Args[1], os.Args[2:]

	switch command {
	case "parse":
		if len(args) < 1 {
			usage()
		}
		runParse(args[0], optional(args, 1, cfg.Base))
	case "resolve":
		if len(args) < 2 {
			usage()
		}
		runResolve(args[0], args[1])
	case "escape":
		if len(args) < 1 {
			usage()
		}
		runEscape(args[0], optional(args, 1, "iri"))
	case "load":
		db, files := cfg.database(args)
		if len(files) == 0 {
			usage()
		}
		runLoad(cfg, db, files)
	case "count":
		db, _ := cfg.database(args)
		runCount(db)
	case "match":
		db, terms := cfg.database(args)
		runMatch(db, terms)
	case "gordf":
		if len(args) < 1 {
			usage()
		}
		runGordf(args[0], optional(args, 1, cfg.Base))
	case "serve":
		db, rest := cfg.database(args)
		runServer(cfg, db, optional(rest, 0, "localhost:8080"))
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func optional(args []string, i int, fallback string) string {
	if len(args) > i {
		return args[i]
	}
	return fallback
}

func runParse(path, base string) {
	triples, _, err := loader.ParseFile(path, base)
	if err != nil {
		log.Fatalf("Failed to parse: %v", err)
	}
	for _, t := range triples.Triples() {
		fmt.Println(colorize(t.Subject), colorize(t.Predicate), colorize(t.Object), ".")
	}
}

func colorize(term rdf.Term) string {
	switch term.Kind() {
	case rdf.KindIRI:
		return iriColor.Sprint(term.String())
	case rdf.KindBlank:
		return blankColor.Sprint(term.String())
	default:
		return literalColor.Sprint(term.String())
	}
}

func runResolve(ref, base string) {
	resolved, ok := iri.Resolve(ref, base, iri.IRIStrict)
	if !ok {
		log.Fatalf("Invalid IRI reference: %s", ref)
	}
	fmt.Println(resolved)
}

func runEscape(s, mode string) {
	modes := map[string]iri.EscapeMode{
		"iri":             iri.EscapeIRI,
		"uri":             iri.EscapeURI,
		"uri-strict":      iri.EscapeURIStrict,
		"iri-fix-percent": iri.EscapeIRIFixPercent,
	}
	m, ok := modes[mode]
	if !ok {
		log.Fatalf("Unknown escape mode: %s", mode)
	}
	fmt.Println(iri.Escape(s, m))
}

func openStore(db string) *store.TripleStore {
	if db == "" {
		log.Fatal("No database given: pass <db> or set TURTLE_DB")
	}
	badgerStorage, err := storage.NewBadgerStorage(db)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	return store.NewTripleStore(badgerStorage, encoding.NewTermEncoder(), encoding.NewTermDecoder())
}

func runLoad(cfg config, db string, files []string) {
	tripleStore := openStore(db)
	defer tripleStore.Close()

	l := loader.New(tripleStore, nil)
	l.Progress = log.Printf

	results, err := l.LoadFiles(files, cfg.Base)
	if err != nil {
		tripleStore.Close()
		log.Fatalf("Failed to load: %v", err)
	}

	var total, added int
	for _, r := range results {
		total += r.Triples
		added += r.Added
	}
	color.Green("Loaded %d files: %d triples, %d new", len(results), total, added)

	if cfg.Metrics {
		if err := l.Metrics().WriteText(os.Stdout); err != nil {
			log.Printf("Failed to write metrics: %v", err)
		}
	}
}

func runCount(db string) {
	tripleStore := openStore(db)
	defer tripleStore.Close()

	count, err := tripleStore.Count()
	if err != nil {
		tripleStore.Close()
		log.Fatalf("Failed to count: %v", err)
	}
	fmt.Println(count)
}

func runMatch(db string, args []string) {
	if len(args) > 3 {
		usage()
	}
	var terms [3]any
	for i, arg := range args {
		if strings.HasPrefix(arg, "?") {
			terms[i] = store.NewVariable(strings.TrimPrefix(arg, "?"))
			continue
		}
		term, err := rdf.ParseTerm(arg)
		if err != nil {
			log.Fatalf("Invalid term %q: %v", arg, err)
		}
		terms[i] = term
	}

	tripleStore := openStore(db)
	defer tripleStore.Close()

	matches, err := tripleStore.MatchAll(&store.Pattern{Subject: terms[0], Predicate: terms[1], Object: terms[2]})
	if err != nil {
		tripleStore.Close()
		log.Fatalf("Failed to match: %v", err)
	}
	for _, t := range matches.Triples() {
		fmt.Println(colorize(t.Subject), colorize(t.Predicate), colorize(t.Object), ".")
	}
	fmt.Printf("\n%d triples\n", matches.Len())
}

func runServer(cfg config, db, addr string) {
	tripleStore := openStore(db)
	defer tripleStore.Close()

	srv := server.NewServer(tripleStore, nil, addr)
	srv.Base = cfg.Base
	if err := srv.Start(); err != nil {
		tripleStore.Close()
		log.Fatalf("Server error: %v", err)
	}
}

func runGordf(path, base string) {
	triples, _, err := loader.ParseFile(path, base)
	if err != nil {
		log.Fatalf("Failed to parse: %v", err)
	}
	for _, terms := range interop.TriplesToGordf(triples) {
		back, err := interop.TripleFromGordf(terms)
		if err != nil {
			log.Fatalf("Failed to convert %v: %v", terms, errors.Wrap(err, "gordf round trip"))
		}
		if !triples.Contains(back) {
			log.Fatalf("gordf round trip changed %v into %s", terms, back)
		}
		fmt.Println(describe(terms[0]), describe(terms[1]), describe(terms[2]))
	}
}

func describe(t gordf.Term) string {
	switch t.Kind {
	case gordf.IRITerm:
		return iriColor.Sprintf("IRI(%s)", t.Value)
	case gordf.LiteralTerm:
		switch {
		case t.Language != "":
			return literalColor.Sprintf("Literal(%q@%s)", t.Value, t.Language)
		case t.Datatype != "":
			return literalColor.Sprintf("Literal(%q^^%s)", t.Value, t.Datatype)
		default:
			return literalColor.Sprintf("Literal(%q)", t.Value)
		}
	default:
		return blankColor.Sprintf("Blank(%s)", t.Value)
	}
}

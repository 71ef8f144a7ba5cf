// Command latusc solves YAML problem files against the inference
// engine, either in-process or against a running latusd daemon,
// dispatching subcommands from os.Args the same way funxy's CLI does.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/latus-lang/latus/internal/cache"
	"github.com/latus-lang/latus/internal/config"
	"github.com/latus-lang/latus/internal/problemio"
	"github.com/latus-lang/latus/internal/rpc"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "-help", "--help", "help":
		printUsage()
	case "solve":
		handleSolve(os.Args[2:])
	case "cache":
		handleCache(os.Args[2:])
	case "version":
		fmt.Println("latusc (dev)")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: latusc <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  solve <problem%s | dir>   solve a problem file, or every problem file in a directory\n", config.ProblemFileExt)
	fmt.Println("  cache stats                  show cache statistics")
	fmt.Println("  version                      print the version")
}

func handleSolve(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: latusc solve [-remote addr] [-cache path] [-stats] <problem.latus.yaml>")
		os.Exit(1)
	}

	var remoteAddr, cachePath, path string
	var showStats bool
	i := 0
	for i < len(args) {
		switch args[i] {
		case "-remote":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "-remote requires an address")
				os.Exit(1)
			}
			remoteAddr = args[i]
		case "-cache":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "-cache requires a path")
				os.Exit(1)
			}
			cachePath = args[i]
		case "-stats":
			showStats = true
		default:
			if !strings.HasPrefix(args[i], "-") && path == "" {
				path = args[i]
			}
		}
		i++
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "latusc solve: missing problem file")
		os.Exit(1)
	}

	files, err := problemFiles(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "latusc solve: no %s found under %s\n", strings.Join(config.ProblemFileExtensions, "/"), path)
		os.Exit(1)
	}

	for _, f := range files {
		if len(files) > 1 {
			fmt.Printf("=== %s ===\n", f)
		}
		solveFile(f, remoteAddr, cachePath, showStats)
	}
}

// problemFiles resolves a solve argument to the list of problem files it
// names: the file itself, or every config.ProblemFileExtensions entry in
// a directory, matching the way the teacher's CLI expands a directory
// argument into its recognized source files.
func problemFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isProblemFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isProblemFile(name string) bool {
	for _, ext := range config.ProblemFileExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func solveFile(path, remoteAddr, cachePath string, showStats bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %s\n", path, err)
		os.Exit(1)
	}

	start := time.Now()
	var solutionYAML []byte

	if remoteAddr != "" {
		client, err := rpc.Dial(remoteAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error dialing %s: %s\n", remoteAddr, err)
			os.Exit(1)
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		solutionYAML, err = client.Solve(ctx, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Remote solve failed: %s\n", err)
			os.Exit(1)
		}
	} else {
		if cachePath == "" {
			cachePath = config.DefaultCachePath
		}
		store, err := cache.Open(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening cache: %s\n", err)
			os.Exit(1)
		}
		defer store.Close()

		key := cache.Key(raw)
		if cached, ok, err := store.Get(key); err == nil && ok {
			solutionYAML = cached
		} else {
			problem, err := problemio.Decode(raw)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing %s: %s\n", path, err)
				os.Exit(1)
			}
			constraints, err := problem.ToConstraints()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error converting %s: %s\n", path, err)
				os.Exit(1)
			}
			sigma, err := rpc.Infer(constraints)
			if err != nil {
				fmt.Fprintln(os.Stderr, solveErrorText(err))
				os.Exit(1)
			}
			solutionYAML, err = problemio.EncodeSolution(problemio.Vars(constraints), sigma)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding solution: %s\n", err)
				os.Exit(1)
			}
			_ = store.Put(key, solutionYAML)
		}
	}

	os.Stdout.Write(solutionYAML)

	if showStats {
		elapsed := time.Since(start)
		fmt.Fprintf(os.Stderr, "\n%s in %s\n", humanize.Bytes(uint64(len(solutionYAML))), elapsed)
	}
}

func handleCache(args []string) {
	if len(args) == 0 || args[0] != "stats" {
		fmt.Fprintln(os.Stderr, "Usage: latusc cache stats [-cache path]")
		os.Exit(1)
	}

	cachePath := config.DefaultCachePath
	for i := 1; i < len(args); i++ {
		if args[i] == "-cache" && i+1 < len(args) {
			cachePath = args[i+1]
			i++
		}
	}

	store, err := cache.Open(cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %s\n", err)
		os.Exit(1)
	}
	defer store.Close()

	n, err := store.Count()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cache: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %s cached solutions\n", cachePath, humanize.Comma(int64(n)))
}

// solveErrorText colorizes diagnostics when stderr is a real terminal,
// matching the CLI's TTY-aware formatting of other diagnostic output.
func solveErrorText(err error) string {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return fmt.Sprintf("\x1b[31merror:\x1b[0m %s", err)
	}
	return fmt.Sprintf("error: %s", err)
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sablelang/sable/internal/backend"
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
	"github.com/sablelang/sable/internal/parser"
	"github.com/sablelang/sable/internal/pipeline"
	"github.com/sablelang/sable/internal/pkgcache"
	"github.com/sablelang/sable/internal/resolver"
	"github.com/sablelang/sable/internal/utils"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sable <build|check> [flags] <file.sb>")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	veryVerbose := fs.Bool("v", false, "very verbose resolver trace")
	helpful := fs.Bool("helpful", false, "suggest imports on unresolved calls")
	noInline := fs.Bool("no-inline", false, "disable call inlining")
	rounds := fs.Int("rounds", 0, "max resolver rounds (0 = default)")
	output := fs.String("o", "", "output file (build only)")
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		usage()
	}
	filePath := fs.Arg(0)
	if !utils.IsSourceFile(filePath) {
		fmt.Fprintf(os.Stderr, "sable: %s is not a source file\n", filePath)
		os.Exit(2)
	}

	src, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sable: %v\n", err)
		os.Exit(1)
	}

	project, err := config.LoadProject(utils.GetModuleDir(filePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sable: %v\n", err)
		os.Exit(1)
	}

	params := project.Params
	if *veryVerbose {
		params.VeryVerbose = true
	}
	if *helpful {
		params.Helpful = true
	}
	if *noInline {
		params.Inlining = false
	}
	if *rounds > 0 {
		params.MaxRounds = *rounds
	}

	rememberProject(project, string(src))

	ctx := pipeline.NewContext(filePath, string(src), params)
	ctx.Project = project

	stages := []pipeline.Processor{&parser.ParserProcessor{}, &resolver.ResolverProcessor{}}
	if command == "build" {
		stages = append(stages, &backend.BackendProcessor{})
	}
	ctx = pipeline.New(stages...).Run(ctx)

	if len(ctx.Errors) > 0 {
		diagnostics.Render(os.Stderr, ctx.Errors)
		os.Exit(1)
	}

	switch command {
	case "check":
		fmt.Printf("%s: ok\n", filePath)
	case "build":
		out := *output
		if out == "" {
			out = utils.OutputPath(filePath)
		}
		if err := os.WriteFile(out, []byte(ctx.Output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "sable: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s -> %s\n", filePath, out)
	default:
		usage()
	}
}

// rememberProject refreshes this package's record in the build cache.
func rememberProject(project *config.Project, src string) {
	cacheDir := project.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(project.Dir, ".sable-cache")
	}
	cache, err := pkgcache.Open(cacheDir)
	if err != nil {
		return // the cache is an optimization, never a build failure
	}
	defer cache.Close()

	hash := utils.HashSource(src)
	if cached, ok := cache.Get(project.Dir); ok && cached.SourceHash == hash {
		return
	}
	cache.Put(&pkgcache.PackageInfo{
		Dir:        project.Dir,
		Name:       project.Name,
		Backend:    project.Backend,
		Includes:   project.Includes,
		SourceHash: hash,
	})
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/codybloemhard/geolod/internal/driver"
	"github.com/codybloemhard/geolod/internal/issuelog"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// defaultMods is the per-level height modulus applied when -mods is not
// given: level 0 keeps only every 400 m contour, the finest level keeps
// every 5 m one.
var defaultMods = []uint64{400, 200, 100, 50, 25, 5}

// intListFlag parses a comma-separated list of nonnegative integers,
// repeatable across multiple flag occurrences.
type intListFlag []uint64

func (f *intListFlag) String() string {
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, ",")
}

func (f *intListFlag) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", part)
		}
		*f = append(*f, v)
	}
	return nil
}

func main() {
	var (
		output      string
		mode        string
		ft          string
		tag0, tag1  string
		cuts        uint64
		cutsMulti   uint64
		levels      uint64
		mods        intListFlag
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&output, "output", "outp", "Output file")
	flag.StringVar(&mode, "mode", "shapeinfo", "What to do: shapeinfo, mergeheight, lintheight, chunkify, polygonz, triangulate, height, xmltree, xmltags, geomerge, check-tag-child, checK-nonempty-tag")
	flag.StringVar(&ft, "ft", "none", "Input filetype for contour modes: none, shape, kml")
	flag.StringVar(&tag0, "tag0", "none", "XML tag variable")
	flag.StringVar(&tag1, "tag1", "none", "XML tag variable")
	flag.Uint64Var(&cuts, "cuts", 1, "Initial grid dimension when chunking")
	flag.Uint64Var(&cutsMulti, "cuts_multi", 2, "Grid subdivide multiplier per LOD level")
	flag.Uint64Var(&levels, "levels", 6, "How many LODs to generate")
	flag.Var(&mods, "mods", "Per-level height modulus, comma separated (length must equal levels)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: geolod [flags] <inputfile...>\n\n")
		fmt.Fprintf(os.Stderr, "Preprocess shapefiles and KML into compact chunked LOD files.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("geolod %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if len(mods) == 0 {
		mods = defaultMods
	}

	var zlog *zap.Logger
	var err error
	if verbose {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Creating logger: %v", err)
	}
	defer zlog.Sync()
	sugar := zlog.Sugar()

	logger := issuelog.New(sugar)
	cfg := driver.Config{
		Inputs:    inputs,
		Output:    output,
		Mode:      mode,
		FT:        ft,
		Tag0:      tag0,
		Tag1:      tag1,
		Cuts:      cuts,
		CutsMulti: cutsMulti,
		Levels:    levels,
		Mods:      mods,
		Verbose:   verbose,
	}

	if err := driver.Run(cfg, logger, sugar); err != nil {
		log.Fatalf("%v", err)
	}
}

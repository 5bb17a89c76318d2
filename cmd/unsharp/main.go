// Command unsharp sharpens an image with a three-pass box-blur unsharp mask.
//
// Usage:
//
//	unsharp -input photo.ppm -output sharp.png -radius 5
//	unsharp -input photo.png -output sharp.png -backend gpu -compare
//
// With -compare the image is also filtered on the sequential backend and
// the per-channel difference is reported; the command exits with status 1
// when any channel differs by more than one. -reference-output also writes
// the sequential result next to the accelerated one.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gogpu/unsharp"
	_ "github.com/gogpu/unsharp/gpu"
	"github.com/gogpu/unsharp/internal/compare"
	"github.com/gogpu/unsharp/internal/imageio"
)

// compareTolerance is the largest per-channel difference accepted between
// the selected backend and the sequential reference.
const compareTolerance = 1

var (
	errMismatch = errors.New("backend output differs from sequential reference")
	errWorkers  = errors.New("-workers applies only to the parallel backend")
)

// options holds the parsed command line.
type options struct {
	input     string
	output    string
	reference string
	radius    int
	backend   string
	workers   int
	compare   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "input image (PPM, PGM, PBM, PNG, JPEG, GIF, BMP, TIFF)")
	flag.StringVar(&opts.output, "output", "sharpened.png", "output file; format from extension")
	flag.IntVar(&opts.radius, "radius", 5, "blur radius (window side is 2*radius-1)")
	flag.StringVar(&opts.backend, "backend", "", "execution backend: "+strings.Join(unsharp.Backends(), ", ")+" (default: best available)")
	flag.IntVar(&opts.workers, "workers", 0, "worker goroutines for the parallel backend; a positive count selects it")
	flag.BoolVar(&opts.compare, "compare", false, "also run the sequential backend and report differences")
	flag.StringVar(&opts.reference, "reference-output", "", "also write the sequential result to this file (implies -compare)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	unsharp.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if opts.input == "" {
		fmt.Fprintln(os.Stderr, "unsharp: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "unsharp: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	src, format, err := imageio.Load(opts.input)
	if err != nil {
		return err
	}
	fmt.Printf("Input:   %s (%s, %dx%d, %d channels)\n", opts.input, format, src.Width(), src.Height(), src.Channels())

	be, err := openBackend(opts.backend, opts.workers)
	if err != nil {
		return err
	}
	defer be.Close()
	fmt.Printf("Backend: %s\n", be.Name())

	dst, total, err := sharpen(src, opts.radius, be)
	if err != nil {
		return err
	}
	fmt.Printf("Total:   %v\n", total.Round(time.Microsecond))

	if err := imageio.Save(opts.output, dst); err != nil {
		return err
	}
	fmt.Printf("Output:  %s\n", opts.output)

	if !opts.compare && opts.reference == "" {
		return nil
	}
	return compareWithReference(src, dst, opts.radius, opts.reference)
}

// openBackend resolves the -backend and -workers flags. A worker count
// selects the parallel backend when no backend is named.
func openBackend(name string, workers int) (unsharp.Backend, error) {
	if workers > 0 {
		if name != "" && name != unsharp.BackendParallel {
			return nil, fmt.Errorf("%w, not %q", errWorkers, name)
		}
		return unsharp.NewParallelBackend(unsharp.WithWorkers(workers)), nil
	}
	if name == "" {
		return unsharp.DefaultBackend()
	}
	return unsharp.NewBackend(name)
}

// sharpen runs the pipeline on be, printing the duration of each stage.
func sharpen(src *unsharp.Image, radius int, be unsharp.Backend) (*unsharp.Image, time.Duration, error) {
	observer := func(stage unsharp.Stage, elapsed time.Duration) {
		fmt.Printf("  %-9s %v\n", stage, elapsed.Round(time.Microsecond))
	}

	p := unsharp.NewPipeline(unsharp.WithBackend(be), unsharp.WithStageObserver(observer))
	defer p.Close()

	start := time.Now()
	dst, err := p.Run(src, radius)
	return dst, time.Since(start), err
}

// compareWithReference runs the sequential backend on src, optionally saves
// its output to reference, and checks got against it.
func compareWithReference(src, got *unsharp.Image, radius int, reference string) error {
	ref, err := unsharp.NewBackend(unsharp.BackendSequential)
	if err != nil {
		return err
	}
	defer ref.Close()

	fmt.Println("Reference (sequential):")
	want, _, err := sharpen(src, radius, ref)
	if err != nil {
		return err
	}
	if reference != "" {
		if err := imageio.Save(reference, want); err != nil {
			return err
		}
		fmt.Printf("Reference output: %s\n", reference)
	}

	stats, err := compare.Images(got, want)
	if err != nil {
		return err
	}
	fmt.Println("Comparison:")
	fmt.Println(stats)

	if !stats.Within(compareTolerance) {
		return fmt.Errorf("%w: max diff %.0f > %d", errMismatch, stats.MaxAbs, compareTolerance)
	}
	fmt.Printf("  Status: PASS (tolerance: %d)\n", compareTolerance)
	return nil
}

// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// elscint2dcm rewrites ELSCINT1 PMSCT_RLE1 compressed images as DICOM files with native pixel data.
//
// Usage:
//
//	elscint2dcm [flags] input.dcm
//	elscint2dcm [flags] -outdir DIR input.dcm [input.dcm ...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap/zapcore"

	"github.com/GoogleCloudPlatform/elscint-rewrite/internal/logging"
	"github.com/GoogleCloudPlatform/elscint-rewrite/rewrite"
)

const defaultOutput = "outrle.dcm"

type config struct {
	output  string
	outDir  string
	verbose bool
	json    bool
	opts    rewrite.Options
	inputs  []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "elscint2dcm: %v\n", err)
		return 1
	}

	log := logging.New(cfg.verbose, cfg.json, zapcore.AddSync(stderr))
	defer log.Sync()

	jobs, err := cfg.jobs()
	if err != nil {
		fmt.Fprintf(stderr, "elscint2dcm: %v\n", err)
		return 1
	}

	c := rewrite.NewConverter(cfg.opts, log)
	if len(jobs) == 1 {
		_, err = c.Convert(ctx, jobs[0].Input, jobs[0].Output)
	} else {
		_, err = c.ConvertAll(ctx, jobs)
	}
	if err != nil {
		fmt.Fprintf(stderr, "elscint2dcm: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "success")
	return 0
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("elscint2dcm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: elscint2dcm [flags] input.dcm [input.dcm ...]\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.output, "o", defaultOutput, "output file for a single input")
	fs.StringVar(&cfg.outDir, "outdir", "", "output directory, required for more than one input")
	fs.IntVar(&cfg.opts.Rows, "rows", 0, "override the number of rows (0 reads it from the input)")
	fs.IntVar(&cfg.opts.Columns, "columns", 0, "override the number of columns (0 reads it from the input)")
	fs.BoolVar(&cfg.opts.KeepCompressed, "keep-compressed", false, "keep the private compressed pixel data element")
	fs.BoolVar(&cfg.opts.NewInstanceUID, "new-uid", false, "assign a new SOP instance UID to every output")
	fs.IntVar(&cfg.opts.Parallelism, "j", 1, "number of files converted at once")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.BoolVar(&cfg.json, "json", false, "log as JSON")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.inputs = fs.Args()
	if len(cfg.inputs) == 0 {
		fs.Usage()
		return cfg, errors.New("no input files")
	}
	outputSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "o" {
			outputSet = true
		}
	})
	if len(cfg.inputs) > 1 && cfg.outDir == "" {
		return cfg, errors.New("-outdir is required with more than one input")
	}
	if cfg.outDir != "" && outputSet {
		return cfg, errors.New("-o and -outdir are mutually exclusive")
	}
	if err := cfg.opts.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// jobs pairs every input with its output path. Outputs in -outdir keep the input's base name. No
// job may write over its own input.
func (cfg config) jobs() ([]rewrite.Job, error) {
	if cfg.outDir == "" {
		job := rewrite.Job{Input: cfg.inputs[0], Output: cfg.output}
		if err := checkOverwrite(job); err != nil {
			return nil, err
		}
		return []rewrite.Job{job}, nil
	}
	seen := map[string]string{}
	jobs := make([]rewrite.Job, 0, len(cfg.inputs))
	for _, in := range cfg.inputs {
		job := rewrite.Job{Input: in, Output: filepath.Join(cfg.outDir, filepath.Base(in))}
		if prev, ok := seen[job.Output]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, in, job.Output)
		}
		if err := checkOverwrite(job); err != nil {
			return nil, err
		}
		seen[job.Output] = in
		jobs = append(jobs, job)
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return jobs, nil
}

// checkOverwrite fails when the output of job names its input, directly or through a link
func checkOverwrite(job rewrite.Job) error {
	in, err := filepath.Abs(job.Input)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(job.Output)
	if err != nil {
		return err
	}
	if in == out {
		return fmt.Errorf("output %s would overwrite its input", job.Output)
	}
	inInfo, err := os.Stat(in)
	if err != nil {
		return nil
	}
	if outInfo, err := os.Stat(out); err == nil && os.SameFile(inInfo, outInfo) {
		return fmt.Errorf("output %s would overwrite its input %s", job.Output, job.Input)
	}
	return nil
}

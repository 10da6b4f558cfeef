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

package rewrite

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is a single conversion of ConvertAll
type Job struct {
	Input  string
	Output string
}

// ConvertAll converts jobs concurrently, at most Options.Parallelism at a time. The first failure
// cancels the jobs that have not started yet and is returned. Results are in the order of jobs;
// entries of jobs that did not complete hold only their paths.
func (c *Converter) ConvertAll(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := c.Options.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, len(jobs))
	for i, job := range jobs {
		results[i] = Result{Input: job.Input, Output: job.Output}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Options.parallelism())
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.Convert(gctx, job.Input, job.Output)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	// cancellation of ctx stops scheduling without a failing job
	return results, ctx.Err()
}

package upload

import (
	"context"
	"fmt"
	"time"
)

// Uploader sends one file to the backend for indexing under topic.
type Uploader interface {
	Upload(ctx context.Context, topic string, f File) error
}

// Result is the outcome of uploading a single file.
type Result struct {
	Name     string
	Size     int64
	Err      error
	Duration time.Duration
}

// OK reports whether the file uploaded successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report summarizes a committed batch.
type Report struct {
	Topic   string
	Results []Result
}

// Total returns the number of files attempted.
func (r Report) Total() int {
	return len(r.Results)
}

// Succeeded returns the number of files that uploaded.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of files that failed.
func (r Report) Failed() int {
	return r.Total() - r.Succeeded()
}

// Send uploads files to topic one at a time, in order. A failed file does not
// stop the batch and is never retried. progress, when non-nil, is called
// after each file. Once ctx is done the remaining files fail with its error
// without being sent.
func Send(ctx context.Context, u Uploader, topic string, files []File, progress func(Result)) Report {
	report := Report{
		Topic:   topic,
		Results: make([]Result, 0, len(files)),
	}

	for _, f := range files {
		res := Result{Name: f.Name, Size: f.Size}

		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("upload %q: %w", f.Name, err)
		} else {
			start := time.Now()
			res.Err = u.Upload(ctx, topic, f)
			res.Duration = time.Since(start)
		}

		report.Results = append(report.Results, res)
		if progress != nil {
			progress(res)
		}
	}

	return report
}

// Package app wires classification, preview resolution, and download
// orchestration into the command pipeline used by the CLI.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/songreel/songreel/internal/errcat"
	"github.com/songreel/songreel/internal/fetch"
	"github.com/songreel/songreel/internal/history"
	"github.com/songreel/songreel/internal/media"
	"github.com/songreel/songreel/internal/picker"
	"github.com/songreel/songreel/internal/preview"
)

type Options struct {
	Format    string
	OutputDir string
	APIBase   string
	Token     string
	SearchKey string
	Pick      bool
	ShowAlts  bool
	InfoOnly  bool
	JSON      bool
	Quiet     bool
	Timeout   time.Duration
}

type Result struct {
	Input string `json:"input"`
	Title string `json:"title,omitempty"`
	Path  string `json:"path,omitempty"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

type runner struct {
	opts     Options
	resolver *preview.Resolver
	dl       *fetch.Downloader
	renderer fetch.Renderer
	hist     *history.DB
}

func newRunner(opts Options, renderer fetch.Renderer) *runner {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Minute
	}
	if renderer == nil {
		renderer = fetch.NopRenderer{}
	}

	// The ledger is best effort; a download still succeeds when the
	// history database cannot be opened, but the user gets told why
	// -history will come up empty.
	var hist *history.DB
	if path, err := history.DefaultPath(); err != nil {
		renderer.Log(fetch.LogWarn, "download history unavailable: "+err.Error())
	} else if db, err := history.Open(path); err != nil {
		renderer.Log(fetch.LogWarn, "download history unavailable: "+err.Error())
	} else {
		hist = db
	}

	return &runner{
		opts:     opts,
		resolver: preview.NewResolver(fetch.NewMetadataClient(opts.Timeout), opts.SearchKey),
		dl: fetch.NewDownloader(
			fetch.NewAPIClient(opts.Timeout),
			opts.APIBase,
			opts.Token,
			opts.OutputDir,
			renderer,
		),
		renderer: renderer,
		hist:     hist,
	}
}

func (r *runner) close() {
	if r.hist != nil {
		r.hist.Close()
	}
}

// Run processes each input on a pool of jobs workers and reports the
// highest exit code among the failures.
func Run(ctx context.Context, inputs []string, opts Options, jobs int) ([]Result, int) {
	if jobs < 1 {
		jobs = 1
	}
	// The interactive match picker and the progress line both own the
	// terminal, so they only run for a single sequential job.
	interactive := jobs == 1 && !opts.Quiet && !opts.JSON
	if jobs > 1 {
		opts.Pick = false
	}
	var renderer fetch.Renderer = fetch.NopRenderer{}
	if interactive {
		renderer = fetch.NewTerminalRenderer()
	}
	r := newRunner(opts, renderer)
	defer r.close()
	defer fetch.CloseIdleConnections()

	tasks := make(chan string)
	results := make(chan Result, len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case input, ok := <-tasks:
					if !ok {
						return
					}
					res := r.process(ctx, input)
					if res.Err != nil {
						res.Error = res.Err.Error()
					}
					select {
					case results <- res:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	submitted := 0
	for _, input := range inputs {
		select {
		case <-ctx.Done():
		case tasks <- input:
			submitted++
			continue
		}
		break
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(results)
	}()

	output := make([]Result, 0, submitted)
	exitCode := 0
	for res := range results {
		output = append(output, res)
		if res.Err != nil {
			if code := errcat.ExitCode(res.Err); code > exitCode {
				exitCode = code
			}
		}
	}

	if ctx.Err() != nil && exitCode == 0 {
		exitCode = 130
	}
	return output, exitCode
}

func (r *runner) process(ctx context.Context, input string) Result {
	res := Result{Input: input}

	desc := media.Classify(input)
	if desc == nil {
		res.Err = errcat.Newf(errcat.CategoryInvalidInput, "unrecognized link: %q", input)
		return res
	}

	pv, err := r.resolver.Resolve(ctx, desc)
	if err != nil {
		res.Err = err
		return res
	}
	res.Title = pv.Title
	if pv.Degraded {
		r.renderer.Log(fetch.LogWarn, "preview metadata unavailable; using generic details")
	}

	if r.opts.ShowAlts && len(pv.Alternates) > 0 {
		printAlternates(pv)
	}

	if r.opts.InfoOnly {
		return r.printInfo(pv, res)
	}

	if r.opts.Pick && len(pv.Alternates) > 1 {
		choice, err := picker.Pick(input, pv.Alternates)
		if err != nil {
			res.Err = errcat.Wrap(errcat.CategoryPreview, err)
			return res
		}
		if choice < 0 {
			return res
		}
		picked := pv.Alternates[choice]
		pv = &picked
		res.Title = pv.Title
	}

	session := fetch.NewSession()
	if err := r.dl.Download(ctx, pv, r.opts.Format, session); err != nil {
		res.Err = err
		return res
	}

	path, err := r.dl.Save(session)
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = path

	if r.hist != nil {
		tags := session.Tags()
		r.hist.Record(history.Record{
			Input:    input,
			Title:    firstNonEmpty(tags.Title, pv.Title),
			Artist:   firstNonEmpty(tags.Artist, pv.Author),
			Platform: string(pv.Platform),
			Format:   r.opts.Format,
			FilePath: path,
			FileSize: int64(len(session.Artifact())),
		})
	}
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *runner) printInfo(pv *preview.Preview, res Result) Result {
	info := struct {
		Title        string `json:"title"`
		Author       string `json:"author"`
		Platform     string `json:"platform"`
		IsCollection bool   `json:"is_collection"`
		ItemCount    int    `json:"item_count,omitempty"`
		ArtworkURL   string `json:"artwork_url,omitempty"`
		ResolvedURL  string `json:"resolved_url"`
	}{
		Title:        pv.Title,
		Author:       pv.Author,
		Platform:     string(pv.Platform),
		IsCollection: pv.IsCollection,
		ItemCount:    pv.ItemCount,
		ArtworkURL:   pv.ArtworkURL,
		ResolvedURL:  pv.ResolvedURL,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(info); err != nil {
		res.Err = errcat.Wrap(errcat.CategoryPreview, err)
	}
	return res
}

func printAlternates(pv *preview.Preview) {
	fmt.Fprintf(os.Stderr, "matches for %q:\n", pv.Title)
	for i, alt := range pv.Alternates {
		fmt.Fprintf(os.Stderr, "  %d. %s  (%s)\n", i+1, alt.Title, alt.Author)
	}
}

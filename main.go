package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/songreel/songreel/internal/app"
	"github.com/songreel/songreel/internal/config"
	"github.com/songreel/songreel/internal/errcat"
	"github.com/songreel/songreel/internal/history"
)

func main() {
	var opts app.Options
	var apiBase, token string
	var saveToken bool
	var showHistory int
	var jobs int

	flag.StringVar(&opts.Format, "format", "mp3", "audio format to request (e.g. mp3, m4a, opus)")
	flag.StringVar(&opts.OutputDir, "o", ".", "directory to save downloads into")
	flag.StringVar(&apiBase, "api", "", "download service base URL (default "+config.DefaultAPIBase+")")
	flag.StringVar(&token, "token", "", "access token (falls back to SONGREEL_TOKEN or the saved token file)")
	flag.BoolVar(&saveToken, "save-token", false, "persist the -token value for future runs")
	flag.BoolVar(&opts.Pick, "pick", false, "interactively pick among search matches")
	flag.BoolVar(&opts.ShowAlts, "alts", false, "list alternate search matches")
	flag.BoolVar(&opts.InfoOnly, "info", false, "print preview metadata as JSON without downloading")
	flag.IntVar(&jobs, "jobs", 1, "number of concurrent downloads")
	flag.BoolVar(&opts.JSON, "json", false, "emit JSON output (suppresses the progress line)")
	flag.BoolVar(&opts.Quiet, "quiet", false, "suppress progress output (errors still shown)")
	flag.DurationVar(&opts.Timeout, "timeout", 3*time.Minute, "per-request timeout")
	flag.IntVar(&showHistory, "history", 0, "print the N most recent downloads and exit")
	flag.Parse()

	if showHistory > 0 {
		os.Exit(printHistory(showHistory, opts.JSON))
	}

	if saveToken {
		if token == "" {
			fmt.Fprintln(os.Stderr, "error: -save-token requires -token")
			os.Exit(errcat.ExitCode(errcat.New(errcat.CategoryInvalidInput, "missing token")))
		}
		if err := config.SaveToken(token); err != nil {
			fmt.Fprintf(os.Stderr, "error: saving token: %v\n", err)
			os.Exit(1)
		}
		if flag.NArg() == 0 {
			return
		}
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		err := errcat.New(errcat.CategoryInvalidInput, "no link or search query provided")
		if opts.JSON {
			writeJSONError("", err)
		} else {
			fmt.Fprintf(os.Stderr, "usage: %s [options] <link or search query> [...]\n", os.Args[0])
			flag.PrintDefaults()
		}
		os.Exit(errcat.ExitCode(err))
	}

	opts.APIBase = config.APIBase(apiBase)
	opts.Token = config.Token(token)
	opts.SearchKey = config.SearchKey()
	if opts.JSON {
		opts.Quiet = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, exitCode := app.Run(ctx, inputs, opts, jobs)

	for _, res := range results {
		switch {
		case opts.JSON:
			writeJSONResult(res)
		case res.Err != nil:
			fmt.Fprintf(os.Stderr, "error: %v\n", res.Err)
		case res.Path != "":
			fmt.Fprintf(os.Stderr, "saved %s\n", res.Path)
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func printHistory(limit int, asJSON bool) int {
	path, err := history.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: locating history: %v\n", err)
		return 1
	}
	db, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening history: %v\n", err)
		return 1
	}
	defer db.Close()

	records, err := db.Recent(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading history: %v\n", err)
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		for _, r := range records {
			_ = enc.Encode(struct {
				Title   string `json:"title"`
				Artist  string `json:"artist,omitempty"`
				Path    string `json:"path"`
				SavedAt string `json:"saved_at"`
			}{r.Title, r.Artist, r.FilePath, r.SavedAt.Format(time.RFC3339)})
		}
		return 0
	}

	for _, r := range records {
		fmt.Printf("%s  %-40s %s\n", r.SavedAt.Format("2006-01-02 15:04"), r.Title, r.FilePath)
	}
	if total, err := db.Count(); err == nil && total > len(records) {
		fmt.Printf("showing %d of %d recorded downloads\n", len(records), total)
	}
	return 0
}

func writeJSONResult(res app.Result) {
	if res.Err != nil {
		writeJSONError(res.Input, res.Err)
		return
	}
	payload := struct {
		Type  string `json:"type"`
		Input string `json:"input"`
		Title string `json:"title,omitempty"`
		Path  string `json:"path,omitempty"`
	}{
		Type:  "result",
		Input: res.Input,
		Title: res.Title,
		Path:  res.Path,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeJSONError(input string, err error) {
	payload := struct {
		Type     string `json:"type"`
		Input    string `json:"input,omitempty"`
		Category string `json:"category"`
		Error    string `json:"error"`
	}{
		Type:     "error",
		Input:    input,
		Category: string(errcat.CategoryOf(err)),
		Error:    err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

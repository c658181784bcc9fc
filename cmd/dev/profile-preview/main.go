package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garnizeh/vagas/internal/config"
	"github.com/garnizeh/vagas/internal/profiler"
	"github.com/garnizeh/vagas/pkg/models"
	"github.com/garnizeh/vagas/pkg/ollama"
)

// Renders the profile prompt for a transcript file and, unless -dry-run is
// set, prints what the configured model writes for it. Nothing is stored.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	transcriptPath := flag.String("transcript", "", "Path to a plain text interview transcript")
	name := flag.String("name", "Candidate", "Applicant full name")
	skills := flag.String("skills", "", "Applicant skills")
	posting := flag.String("posting", "Software Engineer", "Posting name")
	model := flag.String("model", "", "Model name (defaults to profiler.model)")
	dryRun := flag.Bool("dry-run", false, "Only print the rendered prompt")
	flag.Parse()

	if *transcriptPath == "" {
		fmt.Fprintln(os.Stderr, "-transcript is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	_ = cfg.Validate()

	transcript, err := os.ReadFile(*transcriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read transcript: %v\n", err)
		os.Exit(1)
	}

	m := *model
	if m == "" {
		m = cfg.Profiler.Model
	}
	if m == "" && !*dryRun {
		fmt.Fprintln(os.Stderr, "no model: pass -model or set profiler.model")
		os.Exit(2)
	}

	client, err := ollama.NewDefaultClient(cfg.Ollama)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	p := profiler.New(nil, client, m, cfg.Profiler.Template)
	applicant := &models.Applicant{FullName: *name, Skills: *skills, Transcript: string(transcript)}
	prompt, err := p.Prompt(applicant, &models.Posting{Name: *posting})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render prompt: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Println(prompt)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := client.Generate(ctx, m, prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generate: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(res.Text)
	fmt.Fprintf(os.Stderr, "model=%v latency_ms=%v\n", res.Meta["model"], res.Meta["latency_ms"])
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"llmchat/internal/client"
)

const demoPrompt = "AIについて100文字で教えてください"

func newClientCmd(a *app) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	newClient := func(cmd *cobra.Command) *client.Client {
		url := a.cfg.Client.BaseURL
		if cmd.Flags().Changed("url") {
			url = baseURL
		}
		d := time.Duration(a.cfg.Client.TimeoutSeconds) * time.Second
		if cmd.Flags().Changed("timeout") {
			d = timeout
		}
		return client.New(url, client.WithTimeout(d), client.WithLogger(a.log))
	}

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Call a remote inference API",
		Example: "  llmchat client demo --url https://your-tunnel.example\n" +
			"  llmchat client generate --max-new-tokens 128 \"Tell me about AI\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("client requires a subcommand: health|model|fortune|generate|demo")
		},
	}
	cmd.PersistentFlags().StringVar(&baseURL, "url", "", "API base URL (defaults LLMCHAT_API_URL or http://localhost:8000)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (0 waits indefinitely)")

	health := &cobra.Command{Use: "health", Short: "GET /health", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()
		return printHealth(cmd.Context(), cmd.OutOrStdout(), c)
	}}
	model := &cobra.Command{Use: "model", Short: "GET /model", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()
		return printModel(cmd.Context(), cmd.OutOrStdout(), c)
	}}
	fortune := &cobra.Command{Use: "fortune", Short: "GET /fortune", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()
		return printFortune(cmd.Context(), cmd.OutOrStdout(), c)
	}}

	var (
		maxNew      int
		temperature float64
		topP        float64
		greedy      bool
	)
	generate := &cobra.Command{Use: "generate [prompt]", Short: "POST /generate", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()
		return printGenerate(cmd.Context(), cmd.OutOrStdout(), c, strings.Join(args, " "),
			client.WithMaxNewTokens(maxNew),
			client.WithTemperature(temperature),
			client.WithTopP(topP),
			client.WithSampling(!greedy),
		)
	}}
	generate.Flags().IntVar(&maxNew, "max-new-tokens", 512, "Maximum number of new tokens")
	generate.Flags().Float64Var(&temperature, "temperature", 0.7, "Sampling temperature")
	generate.Flags().Float64Var(&topP, "top-p", 0.9, "Nucleus sampling probability")
	generate.Flags().BoolVar(&greedy, "greedy", false, "Disable sampling (do_sample=false)")

	demo := &cobra.Command{Use: "demo", Short: "Run health, model, fortune and one generation in order", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()
		return runDemo(cmd.Context(), cmd.OutOrStdout(), c)
	}}

	cmd.AddCommand(health, model, fortune, generate, demo)
	return cmd
}

func printHealth(ctx context.Context, w io.Writer, c *client.Client) error {
	h, err := c.HealthCheck(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printModel(ctx context.Context, w io.Writer, c *client.Client) error {
	m, err := c.GetModelName(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Model served by API: %s\n", m.NameOr("N/A"))
	return err
}

func printFortune(ctx context.Context, w io.Writer, c *client.Client) error {
	f, err := c.GetFortune(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, ">>> %s\n", f.TextOr("Could not fetch fortune."))
	return err
}

func printGenerate(ctx context.Context, w io.Writer, c *client.Client, prompt string, opts ...client.GenerateOption) error {
	res, err := c.Generate(ctx, prompt, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Response: %s\n", res.GeneratedText)
	if res.ResponseTime != nil {
		fmt.Fprintf(w, "Model processing time: %.2fs\n", *res.ResponseTime)
	}
	_, err = fmt.Fprintf(w, "Total request time: %.2fs\n", res.TotalRequestTime)
	return err
}

func runDemo(ctx context.Context, w io.Writer, c *client.Client) error {
	steps := []struct {
		title string
		run   func() error
	}{
		{"Health check:", func() error { return printHealth(ctx, w, c) }},
		{"Get model name:", func() error { return printModel(ctx, w, c) }},
		{"Your fortune for today:", func() error { return printFortune(ctx, w, c) }},
		{"Simple question:", func() error { return printGenerate(ctx, w, c, demoPrompt) }},
	}
	for _, s := range steps {
		fmt.Fprintln(w, s.title)
		if err := s.run(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"agenticerp/internal/router"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// routeCmd shows the routing decision without dispatching
var routeCmd = &cobra.Command{
	Use:   "route [text]",
	Short: "Classify a request and print the routing decision",
	Long: `Scores the request against the keyword set of every domain and prints the
winning domain, its confidence (number of matched keywords) and all raw scores.

Example:
  erp route "order invoice"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

// askCmd routes a request to its agent
var askCmd = &cobra.Command{
	Use:   "ask [text]",
	Short: "Route a request to the matching agent and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

// chatCmd starts the interactive loop
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session; type quit, exit or q to leave",
	RunE:  runChat,
}

func runRoute(cmd *cobra.Command, args []string) error {
	text := joinArgs(args)
	d := router.Classify(text)
	logger.Debug("Classified request", zap.String("text", text), zap.String("domain", string(d.Domain)))

	fmt.Printf("Domain: %s\n", d.Domain)
	fmt.Printf("Confidence: %d\n", d.Confidence)
	fmt.Println("Scores:")
	for _, dom := range router.Domains() {
		fmt.Printf("  %s: %d\n", dom, d.RawScores[dom])
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	text := joinArgs(args)
	logger.Info("Routing request", zap.String("text", text))

	resp, err := sys.Router.Route(ctx, text)
	if err != nil {
		return fmt.Errorf("routing failed: %w", err)
	}
	printResponse(os.Stdout, resp)
	return nil
}

func printResponse(w io.Writer, resp router.Response) {
	if resp.Agent != "" {
		fmt.Fprintf(w, "-> %s (confidence %d)\n", resp.Agent, resp.Confidence)
	}
	if resp.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", resp.Error)
		return
	}
	fmt.Fprintln(w, strings.TrimRight(resp.Text, "\n"))
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	return chatLoop(ctx, sys.Router, os.Stdin, os.Stdout)
}

type requestRouter interface {
	Route(ctx context.Context, text string) (router.Response, error)
}

// chatLoop reads one request per line until quit, exit, q or end of input.
func chatLoop(ctx context.Context, r requestRouter, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Agentic ERP ready. Requests are routed to the right agent automatically.")
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  'Show me customers'   -> Sales Agent")
	fmt.Fprintln(out, "  'Pay the invoice'     -> Finance Agent")
	fmt.Fprintln(out, "  'Check inventory'     -> Inventory Agent")
	fmt.Fprintln(out, "  'Show the KPI report' -> Analytics Agent")
	fmt.Fprintln(out, "Type 'quit', 'exit', or 'q' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nERP > ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		resp, err := r.Route(ctx, line)
		if err != nil {
			return err
		}
		printResponse(out, resp)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/capture"
	"github.com/locateflow/locateflow/internal/config"
	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/export"
	"github.com/locateflow/locateflow/internal/locator"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

func main() {
	godotenv.Load()

	file := flag.String("file", "", "HTML file to inspect (\"-\" for stdin)")
	pageURL := flag.String("url", "", "Page URL to capture and inspect")
	selector := flag.String("selector", "", "CSS selector of the target element (required)")
	format := flag.String("format", "table", "Output format: table, json or csv")
	output := flag.String("output", "", "Write output to file instead of stdout")
	showAria := flag.Bool("aria", false, "Print the accessibility snapshot")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	if *selector == "" {
		red.Fprintln(os.Stderr, "Error: -selector is required")
		flag.Usage()
		os.Exit(1)
	}
	if (*file == "") == (*pageURL == "") {
		red.Fprintln(os.Stderr, "Error: provide exactly one of -file or -url")
		flag.Usage()
		os.Exit(1)
	}

	var logger *zap.Logger
	if *verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	markup, err := readMarkup(*file, *pageURL, logger)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	doc, err := dom.ParseString(markup)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: parsing markup: %v\n", err)
		os.Exit(1)
	}

	matches, err := doc.QuerySelectorAll(*selector)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: invalid selector %q: %v\n", *selector, err)
		os.Exit(1)
	}
	if len(matches) == 0 {
		red.Fprintf(os.Stderr, "Error: no element matches %q\n", *selector)
		os.Exit(1)
	}

	engine := locator.NewEngine(logger)
	inspection, err := engine.Inspect(matches[0], doc)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: inspection failed: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			red.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	switch *format {
	case "table":
		printTable(inspection, len(matches))
		if *showAria && inspection.Aria != nil {
			fmt.Println()
			bold.Println("Accessibility snapshot:")
			if err := export.AriaJSON(out, inspection.Aria); err != nil {
				red.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
	case "json", "csv":
		f, err := export.ParseFormat(*format)
		if err != nil {
			red.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *showAria {
			err = export.Aria(out, f, inspection.Aria)
		} else {
			err = export.Strategies(out, f, inspection.Strategies)
		}
		if err != nil {
			red.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		red.Fprintf(os.Stderr, "Error: unsupported format %q\n", *format)
		os.Exit(1)
	}
}

// readMarkup loads page markup from a file, stdin, or a live capture.
func readMarkup(file, pageURL string, logger *zap.Logger) (string, error) {
	if pageURL != "" {
		cfg, err := config.LoadWithDefaults()
		if err != nil {
			return "", err
		}
		svc, err := capture.NewService(cfg.Capture, logger)
		if err != nil {
			return "", err
		}
		defer svc.Close()

		page, err := svc.Capture(context.Background(), pageURL)
		if err != nil {
			return "", err
		}
		return string(page.HTML), nil
	}

	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printTable(inspection *locator.Inspection, matchCount int) {
	el := inspection.Element

	bold.Printf("Element: <%s>", el.Tag)
	if el.Text != "" {
		dim.Printf("  %q", truncate(el.Text, 40))
	}
	fmt.Println()
	if matchCount > 1 {
		yellow.Printf("Selector matched %d elements, inspecting the first\n", matchCount)
	}
	fmt.Println()

	if best := inspection.Best(); best != nil {
		bold.Print("Best locator: ")
		cyan.Print(best.Selector)
		fmt.Print("  ")
		scoreColor(best.Confidence.Score).Printf("(%d)\n", best.Confidence.Score)
		fmt.Println()
	}

	bold.Printf("%-6s  %-5s  %-7s  %-7s  %s\n", "TYPE", "SCORE", "UNIQUE", "STABLE", "SELECTOR")
	for _, s := range inspection.Strategies {
		fmt.Printf("%-6s  ", s.Type)
		scoreColor(s.Confidence.Score).Printf("%-5d", s.Confidence.Score)
		fmt.Printf("  %-7s  %-7s  %s\n", mark(s.IsUnique), mark(s.IsStable), s.Selector)
		for _, w := range s.Confidence.Warnings {
			yellow.Printf("        ! %s\n", w)
		}
	}
}

func scoreColor(score int) *color.Color {
	switch {
	case score > 80:
		return green
	case score >= 50:
		return yellow
	default:
		return red
	}
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

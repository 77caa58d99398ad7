package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fatih/color"

	"github.com/staxsum/htmlform"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		color.Red("[-] Error: %v", err)
		fmt.Println("\nExample:")
		fmt.Println("  htmlform -url http://example.com/search -set q=pony")
		os.Exit(1)
	}

	if err := run(context.Background(), opts); err != nil {
		color.Red("[-] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *cliOptions) error {
	fc, err := loadFileConfig(opts.configFile)
	if err != nil {
		return err
	}

	reporter := htmlform.Reporter(htmlform.NewConsoleReporter(os.Stderr))
	if !opts.verbose {
		reporter = warningsOnly(reporter)
	}

	session, err := htmlform.NewSession(sessionConfig(fc, opts), htmlform.WithReporter(reporter))
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}

	doc, err := session.Fetch(ctx, opts.targetURL)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}
	if opts.verbose {
		color.Cyan("[*] Fetched %s", session.BaseURL())
	}

	forms, err := htmlform.ParseForms(doc.Selection, htmlform.WithReporter(reporter))
	if err != nil {
		return fmt.Errorf("failed to parse forms: %w", err)
	}
	if len(forms) == 0 {
		return fmt.Errorf("no forms found on target page")
	}

	color.Green("[+] Found %d form(s)", len(forms))
	for i, form := range forms {
		color.White("  [%d] %s", i, form.Description())
	}

	form, err := selectForm(forms, opts)
	if err != nil {
		return err
	}

	values, err := overrides(opts)
	if err != nil {
		return err
	}
	if len(values) > 0 {
		form, err = htmlform.SetValues(form, values, htmlform.WithReporter(reporter))
		if err != nil {
			return err
		}
	}

	req, err := htmlform.DeriveRequest(form, opts.submit, htmlform.WithReporter(reporter))
	if err != nil {
		return err
	}
	printRequest(req)

	if opts.dryRun {
		return nil
	}

	result, err := session.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}
	printResult(result)
	return nil
}

func selectForm(forms []*htmlform.Form, opts *cliOptions) (*htmlform.Form, error) {
	if opts.formName != "" {
		for _, form := range forms {
			if form.Name == opts.formName {
				return form, nil
			}
		}
		return nil, fmt.Errorf("no form named %q", opts.formName)
	}
	if opts.formIndex < 0 || opts.formIndex >= len(forms) {
		return nil, fmt.Errorf("form index %d out of range (0-%d)", opts.formIndex, len(forms)-1)
	}
	return forms[opts.formIndex], nil
}

func printRequest(req *htmlform.Request) {
	color.Cyan("\n[*] %s %s (%s)", req.Method, req.URL, req.Encoding)
	for _, p := range req.Values {
		color.White("    %s = %s", p.Name, strings.Join(p.Values, ", "))
	}
}

func printResult(doc *goquery.Document) {
	color.Green("[+] Submitted, landed on %s", doc.Url)
	if title := strings.TrimSpace(doc.Find("title").Text()); title != "" {
		color.White("    Title: %s", title)
	}
}

func warningsOnly(next htmlform.Reporter) htmlform.Reporter {
	return htmlform.ReporterFunc(func(d htmlform.Diagnostic) {
		if d.Level >= htmlform.LevelWarn {
			next.Report(d)
		}
	})
}

// Package main is the entry point for tmsctl, the rahtash-tms
// back-office CLI.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TheMinarctic/rahtash-tms-admin/internal/auth"
	"github.com/TheMinarctic/rahtash-tms-admin/internal/config"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/client"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/confirm"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/form"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/tms"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "tmsctl").Str("version", version).Logger()

	logger := log.With().Str("component", "main").Logger()

	creds, err := auth.Resolve(auth.Options{
		AllowConfigFile: cfg.AllowCLIConfigToken,
		ConfigPath:      cfg.CLIConfigPath,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve credentials")
	}
	if creds.Token == "" {
		logger.Warn().Msg("no token resolved from TMSCTL_TOKEN, TMS_TOKEN, or CLI config; requests will be anonymous")
	} else {
		logger.Debug().Str("credential_source", string(creds.Source)).Msg("resolved credentials")
	}
	if creds.BaseURL != "" && os.Getenv("TMS_BASE_URL") == "" {
		cfg.BaseURL = creds.BaseURL
	}

	api, err := client.New(client.Config{
		BaseURL:           cfg.BaseURL,
		Tokens:            creds.Provider(),
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log.With().Str("component", "client").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build API client")
	}
	sdk := tms.New(api, log.Logger)

	if err := run(context.Background(), sdk, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tmsctl: %v\n", err)
		os.Exit(1)
	}
}

// runner erases the Resource type parameter so main can dispatch on the
// resource name from the command line.
type runner interface {
	list(ctx context.Context, values url.Values) error
	get(ctx context.Context, id int) error
	submit(ctx context.Context, f *form.Form) error
	deleteFlow() *confirm.Flow
	form(initial map[string]any) *form.Form
	schema() form.Schema
	name() string
}

type resourceRunner[T any] struct {
	label string
	res   *tms.Resource[T]
}

func (r resourceRunner[T]) name() string        { return r.label }
func (r resourceRunner[T]) schema() form.Schema { return r.res.Schema() }

func (r resourceRunner[T]) form(initial map[string]any) *form.Form {
	return r.res.Form(initial)
}

func (r resourceRunner[T]) list(ctx context.Context, values url.Values) error {
	page, err := r.res.List(ctx, values)
	if err != nil {
		return err
	}
	if page.Empty {
		fmt.Printf("No %ss found.\n", r.label)
		return nil
	}
	if err := printJSON(page.Items); err != nil {
		return err
	}
	fmt.Printf("page %d of %d (%d total)\n", page.PageNow, page.TotalPages, page.TotalResults)
	return nil
}

func (r resourceRunner[T]) get(ctx context.Context, id int) error {
	record, err := r.res.Get(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func (r resourceRunner[T]) submit(ctx context.Context, f *form.Form) error {
	err := r.res.Submit(ctx, f, nil, tms.SubmitHooks{
		OnSuccess: func(msg string) { fmt.Println(msg) },
		OnError:   func(msg string) { fmt.Fprintln(os.Stderr, msg) },
	})
	if err != nil {
		for _, line := range fieldErrorLines(f.Errors()) {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	return err
}

func (r resourceRunner[T]) deleteFlow() *confirm.Flow {
	return r.res.DeleteFlow(nil, tms.SubmitHooks{
		OnError: func(msg string) { fmt.Fprintln(os.Stderr, msg) },
	})
}

func runners(sdk *tms.Client) map[string]runner {
	return map[string]runner{
		"shipment":         resourceRunner[tms.Shipment]{"shipment", sdk.Shipments},
		"container":        resourceRunner[tms.ShipmentContainer]{"container", sdk.Containers},
		"step":             resourceRunner[tms.ShipmentStep]{"step", sdk.Steps},
		"port":             resourceRunner[tms.ShipmentPort]{"port", sdk.Ports},
		"document":         resourceRunner[tms.Document]{"document", sdk.Documents},
		"document-type":    resourceRunner[tms.DocumentType]{"document-type", sdk.DocumentTypes},
		"driver":           resourceRunner[tms.Driver]{"driver", sdk.Drivers},
		"company":          resourceRunner[tms.Company]{"company", sdk.Companies},
		"company-category": resourceRunner[tms.CompanyCategory]{"company-category", sdk.CompanyCategories},
		"address":          resourceRunner[tms.Address]{"address", sdk.Addresses},
		"user":             resourceRunner[tms.User]{"user", sdk.Users},
	}
}

func run(ctx context.Context, sdk *tms.Client, args []string) error {
	if len(args) < 2 {
		usage()
		return fmt.Errorf("expected a resource and a command")
	}

	all := runners(sdk)
	res, ok := all[args[0]]
	if !ok {
		usage()
		return fmt.Errorf("unknown resource %q", args[0])
	}
	command, rest := args[1], args[2:]

	switch command {
	case "list":
		return runList(ctx, res, rest)
	case "get":
		return runGet(ctx, res, rest)
	case "create":
		return runUpsert(ctx, res, rest, false)
	case "update":
		return runUpsert(ctx, res, rest, true)
	case "delete":
		return runDelete(ctx, res, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runList(ctx context.Context, res runner, args []string) error {
	fs := flag.NewFlagSet(res.name()+" list", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	ordering := fs.String("ordering", "", "ordering field, prefix with - for descending")
	var filters stringList
	fs.Var(&filters, "filter", "extra query filter as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	values := url.Values{}
	values.Set("page", strconv.Itoa(*page))
	if *ordering != "" {
		values.Set("ordering", *ordering)
	}
	for _, raw := range filters {
		key, value, found := strings.Cut(raw, "=")
		if !found {
			return fmt.Errorf("filter %q is not key=value", raw)
		}
		values.Set(key, value)
	}
	return res.list(ctx, values)
}

func runGet(ctx context.Context, res runner, args []string) error {
	fs := flag.NewFlagSet(res.name()+" get", flag.ContinueOnError)
	id := fs.Int("id", 0, "record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("--id is required")
	}
	return res.get(ctx, *id)
}

func runUpsert(ctx context.Context, res runner, args []string, update bool) error {
	fs := flag.NewFlagSet(res.name(), flag.ContinueOnError)
	id := fs.Int("id", 0, "record id (update only)")
	var sets, files stringList
	fs.Var(&sets, "set", "field value as name=value (repeatable)")
	fs.Var(&files, "file", "file field as name=path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var initial map[string]any
	if update {
		if *id <= 0 {
			return fmt.Errorf("--id is required for update")
		}
		initial = map[string]any{"id": *id}
	}

	f := res.form(initial)
	for _, raw := range sets {
		name, value, found := strings.Cut(raw, "=")
		if !found {
			return fmt.Errorf("--set %q is not name=value", raw)
		}
		if err := f.Set(name, parseScalar(res.schema(), name, value)); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}
	for _, raw := range files {
		name, path, found := strings.Cut(raw, "=")
		if !found {
			return fmt.Errorf("--file %q is not name=path", raw)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if err := f.Set(name, form.File{Name: filepath.Base(path), Data: data}); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}

	return res.submit(ctx, f)
}

func runDelete(ctx context.Context, res runner, args []string) error {
	fs := flag.NewFlagSet(res.name()+" delete", flag.ContinueOnError)
	id := fs.Int("id", 0, "record id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("--id is required")
	}

	flow := res.deleteFlow()
	flow.Request(*id)

	if !*yes && !promptYesNo(fmt.Sprintf("Delete %s %d? [y/N]: ", res.name(), *id)) {
		flow.Cancel()
		fmt.Println("Cancelled.")
		return nil
	}

	if err := flow.Confirm(ctx); err != nil {
		return err
	}
	fmt.Printf("Deleted %s %d.\n", res.name(), *id)
	return nil
}

// parseScalar types a command-line value according to the schema field
// it targets. Numbers coerce later during validation; booleans must be
// typed here because the form rejects string booleans.
func parseScalar(s form.Schema, name, value string) any {
	for _, field := range s.Fields {
		if field.Name != name {
			continue
		}
		if field.Kind == form.KindBool {
			if b, err := strconv.ParseBool(value); err == nil {
				return b
			}
		}
		break
	}
	return value
}

func fieldErrorLines(errs map[string][]string) []string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s: %s", name, strings.Join(errs[name], "; ")))
	}
	return lines
}

func promptYesNo(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `tmsctl %s (%s, built %s)

Usage:
  tmsctl <resource> <command> [flags]

Resources:
  shipment container step port document document-type
  driver company company-category address user

Commands:
  list    --page N --ordering FIELD --filter key=value
  get     --id N
  create  --set name=value --file name=path
  update  --id N --set name=value --file name=path
  delete  --id N [--yes]
`, version, commit, buildDate)
}

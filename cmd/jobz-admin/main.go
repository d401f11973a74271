package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/target/jobz/config"
	"github.com/target/jobz/internal/adapters/realtime"
	"github.com/target/jobz/internal/bootstrap"
	"github.com/target/jobz/internal/core"
	"github.com/target/jobz/internal/data"
	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	"github.com/target/jobz/internal/querystring"
	"github.com/target/jobz/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	// needsConfig loads AWX configuration before the command runs.
	needsConfig bool
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const defaultResolveTimeout = time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{Ctx: ctx, Logger: logger, Out: os.Stdout}
	if cmd.needsConfig {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			logger.ErrorContext(ctx, "load config", "error", err)
			stop()
			os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
		}
		cmdCtx.Config = cfg
	}

	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"resolve": {
			name:        "resolve",
			description: "Resolve a job detail page and print its bundle",
			needsConfig: true,
			run:         runResolve,
		},
		"groups": {
			name:        "groups",
			description: "Print the realtime groups joined for a job page",
			run:         runGroups,
		},
		"types": {
			name:        "types",
			description: "List job types with their resource family and realtime channel",
			run:         runTypes,
		},
		"clear-options-cache": {
			name:        "clear-options-cache",
			description: "Drop the cached OPTIONS document of a job",
			needsConfig: true,
			run:         runClearOptionsCache,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: jobz-admin <command> [flags] [args]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(w, "  %-24s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

type resolveOptions struct {
	Params  model.RouteParams
	Timeout time.Duration
}

func parseTarget(fs *flag.FlagSet, args []string) (model.RouteParams, error) {
	if err := fs.Parse(args); err != nil {
		return model.RouteParams{}, err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return model.RouteParams{}, fmt.Errorf("usage: jobz-admin %s [flags] <type> <id>", fs.Name())
	}
	var params model.RouteParams
	if err := params.Type.UnmarshalText([]byte(rest[0])); err != nil {
		return model.RouteParams{}, err
	}
	params.ID = rest[1]
	return params, nil
}

func parseResolveFlags(args []string) (resolveOptions, error) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts resolveOptions
	fs.StringVar(&opts.Params.JobEventSearch, "search", "",
		"Event search as in the page URL, e.g. \"failed:true;host_name:web1\" (percent-escapes are decoded)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultResolveTimeout, "Resolution timeout")

	params, err := parseTarget(fs, args)
	if err != nil {
		return resolveOptions{}, err
	}
	opts.Params.Type, opts.Params.ID = params.Type, params.ID
	if rest := fs.Args(); len(rest) > 2 && opts.Params.JobEventSearch == "" {
		opts.Params.JobEventSearch = rest[2]
	}
	search, err := querystring.Unescape(opts.Params.JobEventSearch)
	if err != nil {
		return resolveOptions{}, err
	}
	opts.Params.JobEventSearch = search
	return opts, nil
}

func runResolve(cmdCtx *commandContext, args []string) error {
	opts, err := parseResolveFlags(args)
	if err != nil {
		return err
	}

	// Realtime stays off: resolving a page must not join the socket.
	cfg := cmdCtx.Config
	cfg.Services = string(config.ServiceModeHTTP)
	svc, err := bootstrap.NewServices(&bootstrap.ServiceDeps{Config: &cfg, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	res, err := svc.Resolver.Resolve(ctx, opts.Params)
	if err != nil {
		payload, status := service.FailureBody(err)
		if writeErr := writef(os.Stderr, "status %d: %s\n", status, payload); writeErr != nil {
			return errors.Join(err, writeErr)
		}
		return err
	}
	if res.Redirect {
		return writef(cmdCtx.Out, "%s has no detail page; the UI redirects to %s\n",
			opts.Params.Type, cfg.AWX.RedirectPath)
	}
	return writeJSON(cmdCtx.Out, res.Bundle)
}

func runGroups(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	params, err := parseTarget(fs, args)
	if err != nil {
		return err
	}

	channel, err := jobtype.LookupChannel(params.Type)
	if err != nil {
		return err
	}
	state := model.SocketState{Groups: realtime.Scope(service.SubscriptionGroupsFor(channel), params.ID)}
	if err := writef(cmdCtx.Out, "namespace: %s\n", channel.Namespace(params.ID)); err != nil {
		return err
	}
	return writeJSON(cmdCtx.Out, state)
}

func runTypes(cmdCtx *commandContext, _ []string) error {
	w := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Type\tFamily\tRelated\tChannel\tEvent stream"); err != nil {
		return fmt.Errorf("write types header: %w", err)
	}
	for _, t := range jobtype.All() {
		family, related := "-", "-"
		if res, ok := jobtype.LookupResource(t); ok {
			family, related = string(res.Family), res.Related
		}
		name, key := "-", "-"
		if ch, err := jobtype.LookupChannel(t); err == nil {
			name, key = ch.Name, ch.Key
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\n", t, family, related, name, key); err != nil {
			return fmt.Errorf("write type %s: %w", t, err)
		}
	}
	return w.Flush()
}

func runClearOptionsCache(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("clear-options-cache", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	params, err := parseTarget(fs, args)
	if err != nil {
		return err
	}
	res, ok := jobtype.LookupResource(params.Type)
	if !ok {
		return fmt.Errorf("%s has no resource family", params.Type)
	}

	client, err := bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.RedisConnConfig{
		Redis:  cmdCtx.Config.Redis,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("redis is not configured (set REDIS_ADDR)")
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	cache := core.NewOptionsCacheService(core.OptionsCacheServiceOptions{
		Cache: data.NewRedisCacheRepo(data.RedisCacheRepoOptions{Client: client}),
	})
	if err := cache.Invalidate(cmdCtx.Ctx, res.Family, params.ID); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "cleared OPTIONS cache for %s %s\n", res.Family, params.ID)
}

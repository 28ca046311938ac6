package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simplesurance/automerge/internal/automerge"
	"github.com/simplesurance/automerge/internal/automergeerr"
	"github.com/simplesurance/automerge/internal/cfg"
	"github.com/simplesurance/automerge/internal/githubclt"
	"github.com/simplesurance/automerge/internal/logfields"
)

const appName = "automerge"

// tokenEnvVar is the environment variable that contains the GitHub API
// token.
const tokenEnvVar = "GITHUB_TOKEN"

var logger *zap.Logger

// Version is set via a ldflag on compilation
var Version = "unknown"

func exitOnErr(msg string, err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "ERROR:", msg+", error:", err.Error())
	os.Exit(1)
}

func panicHandler() {
	if r := recover(); r != nil {
		logger.Info(
			"panic caught , terminating gracefully",
			zap.String("panic", fmt.Sprintf("%v", r)),
			zap.StackSkip("stacktrace", 1),
		)

		ctx, cancelFn := context.WithTimeout(context.Background(), time.Minute)
		defer cancelFn()

		goodbye.Exit(ctx, 1)
	}
}

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	DryRun      *bool
	ShowVersion *bool
	Repository  string
}

var args arguments

func mustParseCommandlineParams() {
	args = arguments{
		Verbose: pflag.BoolP(
			"verbose",
			"v",
			false,
			"enable verbose logging",
		),
		ConfigFile: pflag.StringP(
			"cfg-file",
			"c",
			"",
			"path to an optional automerge configuration file",
		),
		DryRun: pflag.Bool(
			"dry-run",
			false,
			"evaluate pull requests but do not merge them",
		),
		ShowVersion: pflag.Bool(
			"version",
			false,
			"print the version and exit",
		),
	}

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... OWNER/REPOSITORY\n", appName)
		fmt.Fprintf(os.Stderr, "Squash-merge dependabot pull requests whose check runs succeeded.\n")
		fmt.Fprintf(os.Stderr, "The GitHub API token is read from the %s environment variable.\n", tokenEnvVar)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *args.ShowVersion {
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "ERROR: expecting exactly 1 OWNER/REPOSITORY argument, got %d\n\n", pflag.NArg())
		pflag.Usage()
		os.Exit(2)
	}

	args.Repository = pflag.Arg(0)
}

func mustParseCfg() *cfg.Config {
	// we use exitOnErr in this function instead of logger.Fatal() because
	// the logger is not initialized yet

	if *args.ConfigFile == "" {
		return cfg.Default()
	}

	file, err := os.Open(*args.ConfigFile)
	exitOnErr("could not open configuration file", err)
	defer file.Close()

	config, err := cfg.Load(file)
	if err != nil {
		exitOnErr(fmt.Sprintf("could not load configuration file: %s", *args.ConfigFile), err)
	}

	return config
}

func initLogFmtLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zapEncoderConfig(config)

	logger := zap.New(zapcore.NewCore(
		zaplogfmt.NewEncoder(cfg),
		os.Stdout,
		logLevel),
	)

	return logger
}

func zapEncoderConfig(config *cfg.Config) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()

	cfg.LevelKey = "loglevel"
	cfg.TimeKey = config.LogTimeKey
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	return cfg
}

func mustInitZapFormatLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig = zapEncoderConfig(config)
	cfg.OutputPaths = []string{"stdout"}
	cfg.Encoding = config.LogFormat
	cfg.Level = zap.NewAtomicLevelAt(logLevel)

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %s\n", err)
		os.Exit(2)
	}

	return logger
}

func mustInitLogger(config *cfg.Config) {
	var logLevel zapcore.Level
	if *args.Verbose {
		logLevel = zapcore.DebugLevel
	} else {
		if err := (&logLevel).Set(config.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "can not set log level to %q: %s \n", config.LogLevel, err)
			os.Exit(2)
		}
	}

	switch config.LogFormat {
	case "logfmt":
		logger = initLogFmtLogger(config, logLevel)
	case "console", "json":
		logger = mustInitZapFormatLogger(config, logLevel)
	default:
		fmt.Fprintf(os.Stderr, "unsupported log-format argument: %q\n", config.LogFormat)
		os.Exit(2)
	}

	logger = logger.Named("main")
	zap.ReplaceGlobals(logger)

	goodbye.Register(func(context.Context, os.Signal) {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing logs failed: %s\n", err)
		}
	})
}

func hide(in string) string {
	if in == "" {
		return in
	}

	return "**hidden**"
}

// fatal logs err and terminates the process with exit code 1 after the
// registered goodbye handlers ran.
func fatal(ctx context.Context, msg, event string, err error) {
	fields := []zap.Field{logfields.Event(event), zap.Error(err)}

	var cfgErr *automergeerr.ConfigError
	if errors.As(err, &cfgErr) {
		fields = append(fields, zap.String("error_type", "configuration"))
	}

	logger.Error(msg, fields...)
	goodbye.Exit(ctx, 1)
}

func mustRetryPolicy(ctx context.Context, config *cfg.Config) automerge.RetryPolicy {
	delay, err := config.GetRetryDelay()
	if err != nil {
		fatal(ctx, "invalid retry configuration", "cfg_invalid", automergeerr.NewConfigError(err))
	}

	maxRetries, err := config.GetMaxRetries()
	if err != nil {
		fatal(ctx, "invalid retry configuration", "cfg_invalid", automergeerr.NewConfigError(err))
	}

	return automerge.RetryPolicy{
		MaxRetries: maxRetries,
		Delay:      delay,
	}
}

func pushMetrics(ctx context.Context, config *cfg.Config, metrics *automerge.Metrics, repo automerge.Repository) {
	if config.PushgatewayURL == "" {
		return
	}

	const pushTimeout = 30 * time.Second
	ctx, cancelFn := context.WithTimeout(ctx, pushTimeout)
	defer cancelFn()

	err := metrics.Push(ctx, config.PushgatewayURL, repo)
	if err != nil {
		logger.Warn(
			"pushing metrics to pushgateway failed",
			logfields.Event("metrics_push_failed"),
			zap.String("pushgateway_url", config.PushgatewayURL),
			zap.Error(err),
		)

		return
	}

	logger.Debug(
		"pushed metrics to pushgateway",
		logfields.Event("metrics_pushed"),
		zap.String("pushgateway_url", config.PushgatewayURL),
	)
}

func main() {
	defer panicHandler()

	ctx := context.Background()

	defer goodbye.Exit(ctx, 1)
	goodbye.Notify(ctx)

	mustParseCommandlineParams()

	if *args.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		os.Exit(0) // nolint:gocritic // defer functions won't run
	}

	config := mustParseCfg()

	mustInitLogger(config)

	goodbye.Register(func(_ context.Context, sig os.Signal) {
		if sig != nil {
			logger.Info(fmt.Sprintf("terminating, received signal %s", sig.String()))
		}
	})

	token := os.Getenv(tokenEnvVar)
	if token == "" {
		fatal(
			ctx,
			"github api token missing",
			"cfg_invalid",
			automergeerr.NewConfigError(fmt.Errorf("%s environment variable is not set", tokenEnvVar)),
		)
	}

	repo, err := automerge.ParseRepository(args.Repository)
	if err != nil {
		fatal(ctx, "invalid repository argument", "cfg_invalid", err)
	}

	retryPolicy := mustRetryPolicy(ctx, config)

	metrics := automerge.NewMetrics()
	opts := []automerge.Option{
		automerge.WithRetryPolicy(retryPolicy),
		automerge.WithMetrics(metrics),
	}

	if config.FilterQuery != "" {
		fq, err := automerge.NewFilterQuery(config.FilterQuery)
		if err != nil {
			fatal(ctx, "invalid filter query", "cfg_invalid", err)
		}

		opts = append(opts, automerge.WithFilterQuery(fq))
	}

	logger.Info(
		"loaded configuration",
		logfields.Event("cfg_loaded"),
		zap.String("cfg_file", *args.ConfigFile),
		logfields.Repository(repo.String()),
		zap.String("github_api_token", hide(token)),
		zap.String("github_api_url", config.GithubAPIURL),
		zap.Uint64("max_retries", retryPolicy.MaxRetries),
		zap.Duration("retry_delay", retryPolicy.Delay),
		zap.String("filter_query", config.FilterQuery),
		zap.String("pushgateway_url", config.PushgatewayURL),
		zap.String("log_format", config.LogFormat),
		zap.String("log_time_key", config.LogTimeKey),
		zap.String("log_level", config.LogLevel),
		zap.Bool("dry_run", *args.DryRun),
	)

	githubClient, err := githubclt.New(token, config.GithubAPIURL)
	if err != nil {
		fatal(ctx, "creating github client failed", "cfg_invalid", automergeerr.NewConfigError(err))
	}

	var ghClient automerge.GithubClient = githubClient
	if *args.DryRun {
		ghClient = automerge.NewDryGithubClient(githubClient, logger)
	}

	orchestrator := automerge.NewOrchestrator(ghClient, opts...)

	_, err = orchestrator.Run(ctx, repo)

	pushMetrics(ctx, config, metrics, repo)

	if err != nil {
		fatal(ctx, "run failed", "run_failed", err)
	}

	goodbye.Exit(ctx, 0)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-raster2pdf/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand is returned by help for an unknown topic.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	// A missing .env is fine; a malformed one is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	setMaxProcs(args, env.Stderr)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, args[1:], env, newConverterPool)
	if err == nil {
		return ExitSuccess
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, ""))
	}
	return exitCodeFor(err)
}

// setMaxProcs configures GOMAXPROCS for container CPU quotas, logging the
// decision only in verbose mode.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(args []string, stderr io.Writer) {
	if slices.Contains(args, "-v") || slices.Contains(args, "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...any) {
			fmt.Fprintf(stderr, format+"\n", a...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
}

// run dispatches a command. Anything that is not a command name is taken as
// convert input.
func run(ctx context.Context, args []string, env *Environment, newPool poolFactory) error {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: no command or input", ErrInvalidFlags)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "convert":
		return helpOnRequest(runConvert(ctx, rest, env, newPool), printConvertUsage, env)
	case "serve":
		return helpOnRequest(runServe(ctx, rest, env, newPool), printServeUsage, env)
	case "config":
		return helpOnRequest(runConfig(rest, env), printConfigUsage, env)
	case "doctor":
		return helpOnRequest(runDoctor(rest, env, defaultDoctorChecks()), printDoctorUsage, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "raster2pdf %s\n", Version)
		return nil
	case "help", "-h", "--help":
		return runHelp(rest, env)
	}
	return helpOnRequest(runConvert(ctx, args, env, newPool), printConvertUsage, env)
}

// helpOnRequest turns a -h/--help parse result into printed usage.
func helpOnRequest(err error, usage func(io.Writer), env *Environment) error {
	if errors.Is(err, flag.ErrHelp) {
		usage(env.Stdout)
		return nil
	}
	return err
}

// runConfig prints the configuration that convert and serve would start
// from.
func runConfig(args []string, env *Environment) error {
	set := flag.NewFlagSet("config", flag.ContinueOnError)
	set.SetOutput(io.Discard)
	var common commonFlags
	addCommonFlags(set, &common)
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}

	cfg, err := loadConfig(common.config, loadEnvConfig())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/equity"
	"github.com/ironsheep/cardsight/internal/recognition"
	"github.com/ironsheep/cardsight/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	command := ""
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "--version", "-v", "version":
		fmt.Printf("cardsight %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	}

	pipe, err := setup()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer pipe.Close()

	switch command {
	case "", "serve":
		err = serve(pipe)
	case "odds":
		err = odds(pipe, args[1:])
	case "detect":
		err = detect(pipe, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		printUsage()
		pipe.Close()
		os.Exit(exitUsage)
	}

	if err != nil {
		pipe.Close()
		if !errors.Is(err, recognition.ErrInsufficientInformation) {
			log.Error(err)
		}
		os.Exit(exitCode(err))
	}
}

// Exit statuses returned by main.
const (
	exitFailure      = 1
	exitUsage        = 2
	exitUnrecognized = 3
)

// exitCode maps a command error to a process exit status. An unresolved hole
// card has already been reported and gets its own status so scripts can
// retry on the next frame.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, recognition.ErrInsufficientInformation):
		return exitUnrecognized
	default:
		return exitFailure
	}
}

func printUsage() {
	fmt.Println("cardsight - read a poker table from the screen and estimate hand equity")
	fmt.Println()
	fmt.Println("Usage: cardsight [command] [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve            Run the MCP server on stdin/stdout (default)")
	fmt.Println("  odds             Recognize the table once and print win probabilities")
	fmt.Println("  detect           Recognize every card slot and print the results")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CARDSIGHT_CONFIG=<file>       Calibration profiles (JSON)")
	fmt.Println("  CARDSIGHT_PROFILE=<name>      Active profile (default default-1920x1080)")
	fmt.Println("  CARDSIGHT_TEMPLATES=<dir>     Rank template directory")
	fmt.Println("  CARDSIGHT_DEBUG_DIR=<dir>     Save every card crop as PNG files")
	fmt.Println("  CARDSIGHT_DEBUG_DB=<file>     Archive every card crop in SQLite")
	fmt.Println("  CARDSIGHT_LOG_LEVEL=debug     Log level (debug, info, warn, error)")
	fmt.Println("  CARDSIGHT_OPPONENTS=3         Default opponent count")
	fmt.Println("  CARDSIGHT_ITERATIONS=2500     Default simulated deals")
	fmt.Println("  CARDSIGHT_SEED=420            Default random seed")
	fmt.Println()
	fmt.Println("serve communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client.")
}

func serve(pipe *pipeline) error {
	log.WithFields(log.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
		"profile": pipe.profile.Name,
	}).Debug("cardsight MCP server starting")

	server.Version = Version
	srv, err := server.New(server.Config{
		Profile:    pipe.profile,
		Recognizer: pipe.recognizer,
		Source:     pipe.source,
		Cache:      pipe.cache,
		Archive:    pipe.archive,
		Opponents:  pipe.settings.Opponents,
		Iterations: pipe.settings.Iterations,
		Seed:       pipe.settings.Seed,
	})
	if err != nil {
		return err
	}
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func odds(pipe *pipeline, args []string) error {
	fs := flag.NewFlagSet("odds", flag.ExitOnError)
	opponents := fs.Int("opponents", pipe.settings.Opponents, "number of opponents")
	iterations := fs.Int("iterations", pipe.settings.Iterations, "simulated deals")
	seed := fs.Uint64("seed", pipe.settings.Seed, "random seed")
	community := fs.String("community", "", "comma-separated board overriding recognition, e.g. \"Ah,Kd,7c\"")
	screenshot := fs.String("screenshot", "", "read this screenshot instead of the live screen")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := pipe.session(*screenshot)
	if err != nil {
		return err
	}
	table, err := session.RecognizeAll()
	if err != nil {
		return err
	}
	renderTable(table)

	hole := recognition.HoleResult{
		Left:  table.Slots[recognition.SlotLeft],
		Right: table.Slots[recognition.SlotRight],
	}
	hero, err := hole.Hand()
	if errors.Is(err, recognition.ErrInsufficientInformation) {
		renderInsufficient(err)
		return err
	}
	if err != nil {
		return err
	}

	board := table.Cards(communityNames(table)...)
	if *community != "" {
		if board, err = recognition.ParseCards(*community); err != nil {
			return fmt.Errorf("--community: %w", err)
		}
	}

	req := equity.Request{
		Hero:       hero,
		Board:      board,
		Opponents:  *opponents,
		Iterations: *iterations,
		Seed:       *seed,
	}
	res, err := equity.MonteCarlo{}.Estimate(req)
	if err != nil {
		return err
	}
	hand, err := equity.DescribeHand(hero, board)
	if err != nil {
		return err
	}
	renderReport(equity.NewReport(req, res), hand)
	return nil
}

func detect(pipe *pipeline, args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	screenshot := fs.String("screenshot", "", "read this screenshot instead of the live screen")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := pipe.session(*screenshot)
	if err != nil {
		return err
	}
	table, err := session.RecognizeAll()
	if err != nil {
		return err
	}
	renderTable(table)
	return nil
}

func communityNames(table *recognition.TableResult) []string {
	var names []string
	for _, name := range table.Order {
		if name != recognition.SlotLeft && name != recognition.SlotRight {
			names = append(names, name)
		}
	}
	return names
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/duty-roster-api/pkg/config"
	applogger "github.com/arnavshah/duty-roster-api/pkg/logger"
	"github.com/arnavshah/duty-roster-api/pkg/models"
	"github.com/arnavshah/duty-roster-api/pkg/scheduler"
)

// rostergen solves a roster request file offline.
// Exit codes: 0 ok, 1 roster has unassigned days, 2 usage, 3 bad input.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rostergen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagInput    string
		flagSeed     int64
		flagAttempts int
		flagFormat   string
		flagLogLevel string
	)
	fs.StringVar(&flagInput, "input", "", "request file (YAML or JSON); \"-\" reads stdin")
	fs.Int64Var(&flagSeed, "seed", 0, "shuffle seed; 0 uses the file's seed or the clock")
	fs.IntVar(&flagAttempts, "attempts", 0, "shuffled attempts; 0 uses the file's value or the default")
	fs.StringVar(&flagFormat, "format", "text", "output format: text or json")
	fs.StringVar(&flagLogLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if flagInput == "" || (flagFormat != "text" && flagFormat != "json") {
		fs.Usage()
		return 2
	}

	logger, err := applogger.NewLogger(&config.LogConfig{Level: flagLogLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return 2
	}
	defer logger.Sync()

	solver := config.DefaultSolver()
	req, err := readRequest(flagInput, solver)
	if err != nil {
		fmt.Fprintf(stderr, "read input: %v\n", err)
		return 3
	}

	dates, err := scheduler.ResolveDates(req, solver.MaxDates)
	if err == nil {
		err = scheduler.ValidateRules(req.Rules)
	}
	if err != nil {
		fmt.Fprintf(stderr, "invalid input: %v\n", err)
		return 3
	}

	seed := time.Now().UnixNano()
	switch {
	case flagSeed != 0:
		seed = flagSeed
	case req.Seed != nil:
		seed = *req.Seed
	}

	attempts := req.Attempts
	if flagAttempts > 0 {
		attempts = flagAttempts
	}
	if attempts <= 0 {
		attempts = solver.DefaultAttempts
	}
	if attempts > solver.MaxAttempts {
		attempts = solver.MaxAttempts
	}

	resp := scheduler.Propose(req, dates, seed, attempts)
	logger.Info("roster generated",
		zap.Int("dates", len(dates)),
		zap.Int("staff", len(req.Rules.Staff)),
		zap.Int("unassigned", len(resp.Unassigned)),
		zap.Int64("seed", seed),
	)
	for _, u := range resp.Unfilled {
		logger.Warn("date left unassigned", zap.String("date", u.Date), zap.Strings("reasons", u.Reasons))
	}

	if flagFormat == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			fmt.Fprintf(stderr, "write output: %v\n", err)
			return 3
		}
	} else {
		writeText(stdout, dates, req.Rules.Staff, resp)
	}

	if len(resp.Unassigned) > 0 {
		return 1
	}
	return 0
}

// readRequest decodes the request file on top of the solver's rule defaults
func readRequest(path string, solver config.SolverConfig) (*models.GenerateRequest, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	req := &models.GenerateRequest{
		Rules: models.RosterRules{
			MinDuties:   solver.DefaultMinDuties,
			MinRestDays: solver.DefaultMinRestDays,
		},
	}
	if err := yaml.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

func writeText(w io.Writer, dates, staff []string, resp *models.GenerateResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, d := range dates {
		name := resp.Roster[d]
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", d, name)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "STAFF\tTOTAL\tWEEKDAY\tWEEKEND\tSHORT")
	for _, s := range staff {
		c := resp.Counts[s]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s, c.Total, c.Weekday, c.Weekend, resp.MinDutyShortfall[s])
	}
	tw.Flush()

	fmt.Fprintf(w, "\nfairness %.3f  unassigned %d  seed %d  attempts %d\n",
		resp.FairnessScore, len(resp.Unassigned), resp.Seed, resp.Attempts)
}

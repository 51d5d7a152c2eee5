// Command powsim drives the discrete-event blockchain simulator core from
// the command line, in the teacher's cmd/ style: a urfave/cli.v1 app whose
// flags populate a params.SimConfig, optionally overlaid on a TOML config
// file, before handing off to the simulator and report packages.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/ground-x/powsim/log"
	"github.com/ground-x/powsim/params"
	"github.com/ground-x/powsim/report"
	"github.com/ground-x/powsim/simulator"
)

var logger = log.NewModuleLogger(log.Simulator)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML configuration file; flags below override its values",
	}
	nFlag = cli.IntFlag{
		Name:  "n",
		Usage: "number of peers",
	}
	z0Flag = cli.Float64Flag{
		Name:  "z0",
		Usage: "percent of peers with slow network links, 0-100",
	}
	z1Flag = cli.Float64Flag{
		Name:  "z1",
		Usage: "percent of peers with low hashing power, 0-100",
	}
	ttxFlag = cli.Float64Flag{
		Name:  "ttx",
		Usage: "mean transaction interarrival time, in seconds",
	}
	iFlag = cli.Float64Flag{
		Name:  "i",
		Usage: "target mean block interval, in seconds",
	}
	maxTimeFlag = cli.Float64Flag{
		Name:  "max-time",
		Usage: "simulated-time horizon, in seconds",
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "RNG seed for a reproducible run",
	}
	outDirFlag = cli.StringFlag{
		Name:  "out",
		Value: "out",
		Usage: "directory to write per-peer report files into",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(log.LvlInfo),
		Usage: "log verbosity, 0 (silent) to 5 (detail)",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "powsim"
	app.Usage = "discrete-event simulator for a permissionless proof-of-work peer network"
	app.Flags = []cli.Flag{
		configFlag, nFlag, z0Flag, z1Flag, ttxFlag, iFlag, maxTimeFlag, seedFlag, outDirFlag, verbosityFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	log.SetVerbosity(log.Lvl(ctx.Int(verbosityFlag.Name)))

	cfg := params.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := params.LoadTOML(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	applyFlagOverrides(ctx, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	result, err := simulator.Run(cfg)
	if err != nil {
		return err
	}

	outDir := ctx.String(outDirFlag.Name)
	if err := report.WritePeerFiles(outDir, result.Peers); err != nil {
		return err
	}

	rows := report.Summary(result.Peers)
	if err := report.WriteSummary(os.Stdout, rows); err != nil {
		return err
	}

	logger.Info("run complete", "events", result.EventsProcessed, "final_time", result.FinalTime, "out", outDir)
	return nil
}

func applyFlagOverrides(ctx *cli.Context, cfg *params.SimConfig) {
	if ctx.IsSet(nFlag.Name) {
		cfg.N = ctx.Int(nFlag.Name)
	}
	if ctx.IsSet(z0Flag.Name) {
		cfg.Z0 = ctx.Float64(z0Flag.Name)
	}
	if ctx.IsSet(z1Flag.Name) {
		cfg.Z1 = ctx.Float64(z1Flag.Name)
	}
	if ctx.IsSet(ttxFlag.Name) {
		cfg.Ttx = ctx.Float64(ttxFlag.Name)
	}
	if ctx.IsSet(iFlag.Name) {
		cfg.I = ctx.Float64(iFlag.Name)
	}
	if ctx.IsSet(maxTimeFlag.Name) {
		cfg.MaxTime = ctx.Float64(maxTimeFlag.Name)
	}
	if ctx.IsSet(seedFlag.Name) {
		cfg.Seed = ctx.Int64(seedFlag.Name)
	}
}

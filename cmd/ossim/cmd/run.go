package cmd

import (
	"errors"
	"fmt"

	"github.com/sarchlab/ossim/config"
	"github.com/sarchlab/ossim/sim"
	"github.com/sarchlab/ossim/simulation"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a workload.",
		Long: "`run --workload w.yaml` runs every process of the workload " +
			"and prints the TLB hits and misses of each of them. Settings " +
			"come from the OSSIM_* environment variables, an optional env " +
			"file, and the flags, in increasing precedence.",
		Args: cobra.NoArgs,
		RunE: runWorkload,
	}

	f := runCmd.Flags()
	f.String("workload", "", "YAML file that lists the processes to run")
	f.String("env", "", "env file with OSSIM_* settings")
	f.Bool("mlq", true, "use one queue per priority level")
	f.Uint64("tlb-size", 0, "size of the TLB storage in bytes")
	f.Int("cpus", 0, "number of CPUs")
	f.Int("time-slice", 0, "instructions per time slice")
	f.String("record", "", "record events into this SQLite database")
	f.Int("monitor", 0, "serve the monitor on this port")
	f.Bool("open-browser", false, "open the monitor in a browser")
	f.Bool("dump", false, "report every TLB access to stdout")
	f.Bool("trace", false, "log every hook invocation")
	f.String("log-file", "", "write the log to this file instead of stderr")
	f.Bool("unique-ids", false, "use ids that are unique across runs")

	_ = runCmd.MarkFlagRequired("workload")

	return runCmd
}

func runWorkload(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env")

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	applyFlags(cmd, &cfg)

	if unique, _ := flags.GetBool("unique-ids"); unique {
		sim.UseUniqueIDGenerator()
	}

	workloadFile, _ := flags.GetString("workload")

	workload, err := config.LoadWorkload(workloadFile)
	if err != nil {
		return err
	}

	logFile, _ := flags.GetString("log-file")

	logger, logCloser, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	b := simulation.MakeBuilder().
		WithConfig(cfg).
		WithWorkload(workload).
		WithLogger(logger)

	if dump, _ := flags.GetBool("dump"); dump {
		b = b.WithDumpWriter(cmd.OutOrStdout())
	}

	if trace, _ := flags.GetBool("trace"); trace {
		b = b.WithHookTracing()
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	runErr := s.Run()

	if err := s.PrintReport(cmd.OutOrStdout()); err != nil {
		runErr = errors.Join(runErr, err)
	}

	if err := s.Terminate(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("terminating: %w", err))
	}

	return runErr
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("mlq") {
		cfg.MLQ, _ = flags.GetBool("mlq")
	}

	if flags.Changed("tlb-size") {
		cfg.TLBSize, _ = flags.GetUint64("tlb-size")
	}

	if flags.Changed("cpus") {
		cfg.NumCPU, _ = flags.GetInt("cpus")
	}

	if flags.Changed("time-slice") {
		cfg.TimeSlice, _ = flags.GetInt("time-slice")
	}

	if flags.Changed("record") {
		cfg.RecordDB, _ = flags.GetString("record")
	}

	if flags.Changed("monitor") {
		cfg.MonitorPort, _ = flags.GetInt("monitor")
	}

	if flags.Changed("open-browser") {
		cfg.OpenBrowser, _ = flags.GetBool("open-browser")
	}
}

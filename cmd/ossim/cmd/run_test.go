package cmd

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ossim/config"
)

const workloadYAML = `
processes:
  - name: writer
    priority: 1
    code:
      - {op: alloc, args: [300, 0]}
      - {op: write, args: [100, 0, 20]}
      - {op: read, args: [0, 20, 1]}
  - name: idle
    priority: 0
    code:
      - {op: calc}
`

var _ = Describe("Run", func() {
	var (
		dir      string
		workload string
		logFile  string
		out      *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		workload = filepath.Join(dir, "w.yaml")
		logFile = filepath.Join(dir, "ossim.log")
		Expect(os.WriteFile(workload, []byte(workloadYAML), 0o644)).
			To(Succeed())

		out = new(bytes.Buffer)
	})

	execute := func(args ...string) error {
		root := newRootCmd()
		root.SetOut(out)
		root.SetErr(out)
		root.SetArgs(append([]string{"run"}, args...))

		return root.Execute()
	}

	It("should print the statistics of every process", func() {
		err := execute("--workload", workload, "--log-file", logFile,
			"--cpus", "2")

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("HIT RATE"))
		Expect(out.String()).To(ContainSubstring("writer"))
		Expect(out.String()).To(ContainSubstring("idle"))

		logContent, err := os.ReadFile(logFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(logContent)).To(ContainSubstring("2 processes finished"))
	})

	It("should require a workload", func() {
		Expect(execute("--log-file", logFile)).NotTo(Succeed())
	})

	It("should fail on a missing workload file", func() {
		err := execute("--workload", filepath.Join(dir, "none.yaml"),
			"--log-file", logFile)

		Expect(err).To(HaveOccurred())
	})

	It("should reject invalid flag values", func() {
		err := execute("--workload", workload, "--log-file", logFile,
			"--time-slice", "0")

		Expect(err).To(MatchError(config.ErrInvalid))
	})

	It("should dump TLB accesses", func() {
		err := execute("--workload", workload, "--log-file", logFile,
			"--dump")

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("TLB after alloc: PID: 1"))
	})

	It("should read settings from an env file", func() {
		envFile := filepath.Join(dir, ".env")
		Expect(os.WriteFile(envFile,
			[]byte(config.EnvMLQ+"=false\n"), 0o644)).To(Succeed())
		DeferCleanup(os.Unsetenv, config.EnvMLQ)

		err := execute("--workload", workload, "--log-file", logFile,
			"--env", envFile)

		Expect(err).NotTo(HaveOccurred())
		Expect(os.Getenv(config.EnvMLQ)).To(Equal("false"))
	})

	It("should reject an invalid env file", func() {
		envFile := filepath.Join(dir, ".env")
		Expect(os.WriteFile(envFile,
			[]byte(config.EnvTimeSlice+"=0\n"), 0o644)).To(Succeed())
		DeferCleanup(os.Unsetenv, config.EnvTimeSlice)

		err := execute("--workload", workload, "--log-file", logFile,
			"--env", envFile)

		Expect(err).To(MatchError(config.ErrInvalid))
	})
})

var _ = Describe("Flags", func() {
	It("should only override the flags that are set", func() {
		cmd := newRunCmd()
		Expect(cmd.ParseFlags([]string{"--mlq=false", "--tlb-size", "2048"})).
			To(Succeed())

		cfg := config.Default()
		applyFlags(cmd, &cfg)

		Expect(cfg.MLQ).To(BeFalse())
		Expect(cfg.TLBSize).To(Equal(uint64(2048)))
		Expect(cfg.NumCPU).To(Equal(config.Default().NumCPU))
	})

	It("should register the run command", func() {
		var names []string
		for _, c := range newRootCmd().Commands() {
			names = append(names, c.Name())
		}

		Expect(names).To(ContainElement("run"))
	})
})

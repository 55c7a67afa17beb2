package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/portsweep/internal/errors"
	"github.com/mkarlsen/portsweep/internal/logging"
	"github.com/mkarlsen/portsweep/internal/output"
	"github.com/mkarlsen/portsweep/internal/scan"
)

var (
	scanStartPort     int
	scanEndPort       int
	scanTimeout       time.Duration
	scanBannerTimeout time.Duration
	scanWorkers       int
	scanBanner        bool
	scanOut           string
	scanShowAll       bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a host for open TCP ports",
	Long: `Scan probes every port in the requested range on a single target host
using a bounded pool of concurrent workers. Each port is classified as
open, closed, or filtered; open ports get a best-effort service name and,
with --banner, a short captured banner.

Results are printed as a table and saved to <out>_<timestamp>.csv and
<out>_<timestamp>.json. Interrupting the scan with Ctrl-C stops claiming
new ports, lets in-flight probes finish, and still writes the partial
results.`,
	Example: `  portsweep scan example.com
  portsweep scan 192.168.1.10 --start 20 --end 1024
  portsweep scan example.com --start 1 --end 1024 --timeout 800ms --workers 200 --banner
  portsweep scan example.com --out scans/example`,
	Args: cobra.ExactArgs(1),
	Run:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanStartPort, "start", 1, "First port of the range")
	scanCmd.Flags().IntVar(&scanEndPort, "end", 1024, "Last port of the range")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 500*time.Millisecond, "Per-connect timeout")
	scanCmd.Flags().DurationVar(&scanBannerTimeout, "banner-timeout", 800*time.Millisecond,
		"Timeout for the optional banner read")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 100, "Number of concurrent probe workers")
	scanCmd.Flags().BoolVar(&scanBanner, "banner", false, "Attempt to read a small service banner after connect")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "Base filename for output files (default 'results')")
	scanCmd.Flags().BoolVar(&scanShowAll, "all", false, "List closed and filtered ports in the console table too")
}

func runScan(cmd *cobra.Command, args []string) {
	target := args[0]

	fileCfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over config file values; config fills in anything the user
	// did not set explicitly.
	flags := cmd.Flags()
	if !flags.Changed("start") {
		scanStartPort = fileCfg.Scan.StartPort
	}
	if !flags.Changed("end") {
		scanEndPort = fileCfg.Scan.EndPort
	}
	if !flags.Changed("timeout") {
		scanTimeout = fileCfg.Scan.ConnectTimeout
	}
	if !flags.Changed("banner-timeout") {
		scanBannerTimeout = fileCfg.Scan.BannerTimeout
	}
	if !flags.Changed("workers") {
		scanWorkers = fileCfg.Scan.Workers
	}
	if !flags.Changed("banner") {
		scanBanner = fileCfg.Scan.Banner
	}
	if scanOut == "" {
		scanOut = filepath.Join(fileCfg.Output.Dir, fileCfg.Output.Base)
	}

	scanConfig := scan.Config{
		Target:         target,
		StartPort:      scanStartPort,
		EndPort:        scanEndPort,
		ConnectTimeout: scanTimeout,
		BannerTimeout:  scanBannerTimeout,
		Workers:        scanWorkers,
		CaptureBanner:  scanBanner,
	}

	// Ctrl-C drains in-flight probes and still writes partial results.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := scan.NewDispatcher(scanConfig)
	summary, err := dispatcher.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.IsCode(err, errors.CodeResolution) {
			fmt.Fprintf(os.Stderr, "Could not resolve hostname: %s\n", target)
		}
		os.Exit(1)
	}

	output.RenderTable(os.Stdout, summary, scanShowAll)

	base := output.Basename(scanOut, summary.StartTime)
	csvPath := base + ".csv"
	jsonPath := base + ".json"

	if err := output.WriteCSV(csvPath, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := output.WriteJSON(jsonPath, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logging.Info("results saved", "csv", csvPath, "json", jsonPath)
	fmt.Printf("Results saved to: %s and %s\n", csvPath, jsonPath)
}

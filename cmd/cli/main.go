package main

import (
	"fmt"
	"os"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/ui"
)

func printUsage() {
	ui.PrintBanner()
	os.Stderr.Sync()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("scan    "), "Scan a URL and show the verdict, insights and updated statistics")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("history "), "List past scans (remote history or --local archive)")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("stats   "), "Tier counts, chart and headline numbers for past scans")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("export  "), "Export history as CSV")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("clear   "), "Ask the scanning service to clear its history")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("report  "), "Render an archived scan as a PDF report")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("classify"), "Map a risk label to its verdict tier offline")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("mcp     "), "Start the MCP server (stdio or --http)")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("version "), "Print the version")
	fmt.Println()

	fmt.Printf("  %s\n", ui.TitleStyle.Render("Examples:"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("phishguard scan https://paypa1-login.example.com --report"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("phishguard history -search paypal -limit 20"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("phishguard export -out scans.csv"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("phishguard mcp -http :8080"))
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("CONFIGURATION"))
	fmt.Println()
	fmt.Println("    Settings resolve in order: defaults, YAML file (-config), environment, flags.")
	fmt.Printf("    Environment variables use the %s prefix, e.g. %sSCANNER_URL.\n", "PHISHGUARD_", "PHISHGUARD_")
	fmt.Println("    Run 'phishguard <command> -h' for the flags of a command.")
	fmt.Println()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(defaults.ExitFailure)
	}

	switch os.Args[1] {
	case "scan", "check":
		runScan()
	case "history", "hist", "ls":
		runHistory()
	case "stats", "statistics":
		runStats()
	case "export":
		runExport()
	case "clear":
		runClear()
	case "report", "pdf":
		runReport()
	case "classify":
		runClassify()
	case "mcp":
		runMCP()
	case "-h", "--help", "help":
		printUsage()
		os.Exit(defaults.ExitSuccess)
	case "-v", "--version", "version":
		fmt.Printf("%s %s\n", defaults.ProductName, defaults.Version)
		os.Exit(defaults.ExitSuccess)
	default:
		exitWithUsage(fmt.Sprintf("unknown command %q", os.Args[1]), "phishguard <command> [flags]")
	}
}

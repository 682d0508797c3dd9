package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/lumen-lang/lumen/internal/assembly"
	"github.com/lumen-lang/lumen/internal/config"
	"github.com/lumen-lang/lumen/internal/coordinator"
	"github.com/lumen-lang/lumen/internal/errors"
)

var (
	// Version info - set by ldflags during build.
	Version = "dev"
	Commit  = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		srcDirFlag  = flag.String("src", "", "Source directory module names resolve under (default: file's own directory)")
		stdlibFlag  = flag.String("stdlib", "", "Stdlib directory searched when a module isn't found under -src")
		jobsFlag    = flag.Int("jobs", 0, "Maximum worker pool width (0: use config/default)")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	command := flag.Arg(0)

	switch command {
	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: lumen check <file.lum>")
			os.Exit(1)
		}
		checkFile(flag.Arg(1), *srcDirFlag, *stdlibFlag, *jobsFlag)

	case "errors":
		printErrorRegistry()

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command '%s'\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

// checkFile loads rootFile and its transitive imports, printing every
// accumulated problem and exiting non-zero if any of them is error
// severity (see assembly.LoadedModule.HasErrors).
func checkFile(rootFile, srcDirFlag, stdlibFlag string, jobs int) {
	cfg, err := config.Load(filepath.Dir(rootFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	cfg = cfg.ApplyFlags(srcDirFlag, stdlibFlag, jobs)
	if cfg.SrcDir == "." {
		cfg.SrcDir = filepath.Dir(rootFile)
	}

	fmt.Printf("%s Loading %s...\n", cyan("→"), rootFile)

	lm, lp := coordinator.LoadWithStdlib(cfg.SrcDir, cfg.StdlibDir, rootFile, nil, nil, cfg.MaxParallelism)
	if lp != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), lp)
		os.Exit(1)
	}

	printProblems(lm.Problems)

	if lm.HasErrors() {
		fmt.Fprintf(os.Stderr, "\n%s %d problem(s) found\n", red("✗"), len(lm.Problems))
		os.Exit(1)
	}

	fmt.Printf("\n%s No errors found (%d export(s))\n", green("✓"), len(lm.RootSolvedTypes.ExportNames()))
}

func printProblems(problems []assembly.Problem) {
	for _, p := range problems {
		label := red(p.Kind)
		if p.Kind == errors.MOD001 {
			label = yellow(p.Kind)
		}
		fmt.Printf("  %s %s: %s\n", label, p.ModuleName, p.Message)
	}
}

func printErrorRegistry() {
	fmt.Println(bold("Lumen error codes"))
	codes := []string{
		errors.PAR001, errors.PAR002, errors.PAR003, errors.PAR004,
		errors.MOD001, errors.MOD002,
		errors.LDR001, errors.LDR002, errors.LDR003,
		errors.CAN001, errors.CAN002, errors.CAN003,
		errors.TC001, errors.TC002, errors.TC003,
	}
	for _, code := range codes {
		info, ok := errors.GetErrorInfo(code)
		if !ok {
			continue
		}
		fmt.Printf("  %s %-13s %s\n", cyan(info.Code), "("+info.Phase+")", info.Description)
	}
}

func printVersion() {
	fmt.Printf("Lumen %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
}

func printHelp() {
	fmt.Println(bold("Lumen - a statically-typed functional language"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lumen <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file>      Load and type-check a file and its imports\n", cyan("check"))
	fmt.Printf("  %s            List known diagnostic codes\n", cyan("errors"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println("  --src <dir>      Source directory (default: the file's own directory)")
	fmt.Println("  --stdlib <dir>   Stdlib directory fallback")
	fmt.Println("  --jobs <n>       Worker pool width")
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ckpt-go/internal/app"
	"ckpt-go/internal/ckpt"
	"ckpt-go/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "CreateBackup").
func newApp(operation, parameters string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "ckpt",
	Short: "Project checkpoint and rollback tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		// Generate a new project ID
		projectID := uuid.New().String()

		cfg := config.NewConfig(projectID, root, defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Project ID:   %s\n", projectID)
		fmt.Printf("Project Root: %s\n", root)
		fmt.Printf("Backup Dir:   %s\n", cfg.BackupDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Project ID:   %s\n", cfg.ProjectID)
		fmt.Printf("Project Root: %s\n", cfg.ProjectRoot)
		fmt.Printf("Backup Dir:   %s\n", cfg.BackupDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("State File:   %s\n", cfg.Registry.StatePath)
		fmt.Printf("Databases:    %s\n", strings.Join(cfg.Database.Paths, ", "))
		fmt.Printf("Config Files: %s\n", strings.Join(cfg.Configs.Paths, ", "))
		return nil
	},
}

// create command
var createCmd = &cobra.Command{
	Use:   "create [LABEL]",
	Short: "Create a restore point",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phase, _ := cmd.Flags().GetString("phase")
		week, _ := cmd.Flags().GetString("week")

		label := "checkpoint"
		if len(args) > 0 {
			label = args[0]
		}

		a, err := newApp("CreateBackup", label)
		if err != nil {
			return err
		}
		defer a.Close()

		rp, err := a.CreateBackup(cmd.Context(), label, phase, week)
		if err != nil {
			a.MarkFailed()
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Restore point created: %s\n", rp.ID)
		if rp.Repository != nil {
			fmt.Printf("  branch %s @ %s\n", rp.Repository.Branch, shortCommit(rp.Repository.Commit))
			if rp.Repository.HasUncommitted {
				fmt.Println("  warning: working tree had uncommitted changes")
			}
		}
		if info, err := os.Stat(rp.ArchivePath); err == nil {
			fmt.Printf("  archive %s (%s)\n", rp.ArchivePath, humanize.Bytes(uint64(info.Size())))
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List restore points",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListBackups", "")
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.ListBackups(cmd.Context())
		if err != nil {
			a.MarkFailed()
			return err
		}

		if len(infos) == 0 {
			fmt.Println("No restore points.")
			return nil
		}

		for _, info := range infos {
			status := info.Status
			if info.Stale {
				status = ckpt.StatusStale
			}
			commit := ""
			if info.Repository != nil {
				commit = shortCommit(info.Repository.Commit)
			}
			fmt.Printf("%-40s  %s  %-8s  %s\n",
				info.ID,
				info.Timestamp.Format("2006-01-02 15:04:05"),
				status,
				commit,
			)
			for _, missing := range info.Missing {
				fmt.Printf("    missing: %s\n", missing)
			}
		}
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Roll back to a restore point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		skipSafety, _ := cmd.Flags().GetBool("skip-safety-backup")
		noCode, _ := cmd.Flags().GetBool("no-code")
		noDatabase, _ := cmd.Flags().GetBool("no-database")
		noConfig, _ := cmd.Flags().GetBool("no-config")
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes && !confirmRestore(id) {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp("RestoreBackup", id)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := ckpt.DefaultRestoreOptions()
		opts.SkipSafetyBackup = skipSafety
		opts.Code = !noCode
		opts.Database = !noDatabase
		opts.Config = !noConfig

		result, err := a.Restore(cmd.Context(), id, opts)
		if err != nil {
			a.MarkFailed()
			return err
		}

		if result.SafetyNet != nil {
			fmt.Printf("Safety-net backup: %s\n", result.SafetyNet.ID)
		}
		for _, f := range result.Facets {
			if f.Err != nil {
				fmt.Printf("%-12s FAILED: %v\n", f.Facet, f.Err)
			} else {
				fmt.Printf("%-12s restored\n", f.Facet)
			}
		}
		if result.Failed() {
			a.MarkFailed()
			return result.Err()
		}
		fmt.Printf("Restored from %s\n", result.RestorePoint.ID)
		return nil
	},
}

// confirmRestore prompts before a destructive restore when stdin is a
// terminal. Non-interactive invocations proceed without prompting so
// automation keeps working.
func confirmRestore(id string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	fmt.Printf("Restoring %s discards uncommitted changes. Continue? [y/N] ", id)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup [RETENTION_DAYS]",
	Short: "Purge restore points past the retention window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days := 30
		if len(args) > 0 {
			var err error
			days, err = strconv.Atoi(args[0])
			if err != nil || days < 0 {
				return fmt.Errorf("invalid retention days: %s", args[0])
			}
		}

		a, err := newApp("Cleanup", strconv.Itoa(days))
		if err != nil {
			return err
		}
		defer a.Close()

		purged, err := a.Cleanup(cmd.Context(), days)
		if err != nil {
			a.MarkFailed()
			return err
		}

		if len(purged) == 0 {
			fmt.Println("Nothing to purge.")
			return nil
		}
		for _, id := range purged {
			fmt.Printf("Purged %s\n", id)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory", "")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			a.MarkFailed()
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	createCmd.Flags().String("phase", "", "Project phase tag")
	createCmd.Flags().String("week", "", "Project week tag")

	restoreCmd.Flags().Bool("skip-safety-backup", false, "Skip the safety-net backup before restoring")
	restoreCmd.Flags().Bool("no-code", false, "Skip repository restore")
	restoreCmd.Flags().Bool("no-database", false, "Skip database restore")
	restoreCmd.Flags().Bool("no-config", false, "Skip config file restore")
	restoreCmd.Flags().BoolP("yes", "y", false, "Do not prompt for confirmation")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(historyCmd)
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/scheduler"
)

// schedulerCmd creates the "scheduler" command group: a long-running daemon
// that fires the crawl and digest jobs at configured times of day.
func schedulerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Manage the job scheduler daemon",
	}
	cmd.AddCommand(schedulerStartCmd())
	cmd.AddCommand(schedulerStopCmd())
	cmd.AddCommand(schedulerRunCmd())
	cmd.AddCommand(setTimesCmd("set-crawler-time", "crawler", "Set the daily crawl times"))
	cmd.AddCommand(setTimesCmd("set-email-time", "email", "Set the daily digest email times"))
	return cmd
}

func schedulerStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler as a background daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			sup := scheduler.NewSupervisor(cfg.Scheduler.PidFile, logger)
			startArgs := []string{"scheduler", "run"}
			if cfgFile != "" {
				startArgs = append(startArgs, "--config", cfgFile)
			}
			return sup.Start(startArgs...)
		},
	}
}

func schedulerStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running scheduler daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			sup := scheduler.NewSupervisor(cfg.Scheduler.PidFile, logger)
			return sup.Stop()
		},
	}
}

func schedulerRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler loop in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
			if err != nil {
				return fmt.Errorf("load timezone: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			runner := scheduler.NewScriptRunner(cfg.Scheduler.LogDir, logger)
			sched := scheduler.New(cfg.Scheduler.ConfigPath, loc, runner, logger)
			if err := sched.Reload(); err != nil {
				return fmt.Errorf("load schedule: %w", err)
			}
			logger.Info("scheduler running", "timezone", cfg.Scheduler.Timezone)
			return sched.Run(ctx)
		},
	}
}

// setTimesCmd builds the two schedule-mutation subcommands. The scheduler
// daemon picks the change up on its next reload without a restart.
func setTimesCmd(use, kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <HH:MM> [HH:MM ...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			sched, err := scheduler.LoadConfig(cfg.Scheduler.ConfigPath)
			if err != nil {
				return fmt.Errorf("load schedule: %w", err)
			}
			if err := sched.SetTimes(kind, args); err != nil {
				return err
			}
			if err := scheduler.SaveConfig(cfg.Scheduler.ConfigPath, sched); err != nil {
				return fmt.Errorf("save schedule: %w", err)
			}
			logger.Info("schedule updated", "kind", kind, "times", args)
			return nil
		},
	}
}

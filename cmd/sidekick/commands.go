package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func addClientFlags(cmd *cobra.Command, flags *ClientFlags) {
	cmd.Flags().StringVar(&flags.APIUrl, "api-url", "", "running instance URL (e.g. http://127.0.0.1:8127/api)")
	cmd.Flags().DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
}

// createStatusCommand creates the status subcommand
func createStatusCommand(flags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			st, err := client.Status()
			if err != nil {
				return err
			}
			base, err := client.BaseURL()
			if err != nil {
				return err
			}
			fmt.Printf("backend: %s\n", st)
			fmt.Printf("base-url: %s\n", base)
			return nil
		},
	}
	addClientFlags(cmd, flags)
	return cmd
}

// createRetryCommand creates the retry subcommand
func createRetryCommand(flags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Re-run the backend spawn and health poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			if err := client.Retry(); err != nil {
				return err
			}
			fmt.Println("retry requested")
			return nil
		},
	}
	addClientFlags(cmd, flags)
	return cmd
}

// createKillRetryCommand creates the kill-retry subcommand
func createKillRetryCommand(flags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill-retry",
		Short: "Kill every backend process and re-run the full start flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			if err := client.KillRetry(); err != nil {
				return err
			}
			fmt.Println("kill and retry requested")
			return nil
		},
	}
	addClientFlags(cmd, flags)
	return cmd
}

// createTaskCommand creates the task subcommand
func createTaskCommand(flags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Start the backend via the OS task scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			if err := client.RunTask(); err != nil {
				return err
			}
			fmt.Println("scheduled task started")
			return nil
		},
	}
	addClientFlags(cmd, flags)
	return cmd
}

// createLogsCommand creates the logs subcommand
func createLogsCommand(flags *LogsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the autostart log path or open the logs folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			if flags.Open {
				if err := client.OpenLogs(); err != nil {
					return err
				}
				fmt.Println("logs folder opened")
				return nil
			}
			path, err := client.AutostartLogPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.Open, "open", false, "open the logs folder in the file browser")
	cmd.Flags().StringVar(&flags.APIUrl, "api-url", "", "running instance URL (e.g. http://127.0.0.1:8127/api)")
	cmd.Flags().DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
	return cmd
}

// createLogCommand creates the log subcommand
func createLogCommand(flags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <message>",
		Short: "Append a record to the application log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			return client.Log(args[0])
		},
	}
	addClientFlags(cmd, flags)
	return cmd
}

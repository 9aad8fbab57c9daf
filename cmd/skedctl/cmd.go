package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/sked/internal/domain/model"
)

func SetupCommands(client *APIClient) *cobra.Command {
	// root command
	rootCmd := &cobra.Command{
		Use:   "skedctl",
		Short: "A CLI client for the sked evaluation dashboard",
	}

	// command for printing an agenda view
	var view string
	agendaCmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print the agenda",
		Run: func(cmd *cobra.Command, args []string) {
			agenda, err := client.GetAgenda(view)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			printAgenda(agenda)
		},
	}
	agendaCmd.Flags().StringVarP(&view, "view", "v", "daily", "Agenda view: daily, weekly or monthly")

	// command for listing stored personal tasks
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List personal tasks",
		Run: func(cmd *cobra.Command, args []string) {
			tasks, err := client.GetTasks()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			printEvents(tasks)
		},
	}

	// command for adding a personal task
	var date string
	var timeRange string
	addCmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a personal task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			task, err := client.AddTask(args[0], date, timeRange)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf("added %s (%s)\n", task.Title, task.ID)
		},
	}
	addCmd.Flags().StringVarP(&date, "date", "d", "", "Task date as YYYY-MM-DD (default today)")
	addCmd.Flags().StringVarP(&timeRange, "time", "t", "", "Display time range, e.g. \"19:00 - 20:00\"")

	// command for removing a personal task
	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a personal task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := client.RemoveTask(args[0]); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Println("removed", args[0])
		},
	}

	// command for triggering a feed sync
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the official feeds now",
		Run: func(cmd *cobra.Command, args []string) {
			result, err := client.Sync()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf("synced %d feeds: %d fetched, %d admitted, %d dropped in %s\n",
				result.Feeds, result.Fetched, result.Admitted, result.Dropped, result.Duration)
		},
	}

	// command for printing dashboard stats
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard stats",
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := client.GetStats()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf("official events: %d\n", stats.OfficialEvents)
			fmt.Printf("personal tasks:  %d\n", stats.PersonalTasks)
			if stats.LastSyncAt != "" {
				fmt.Printf("last sync:       %s\n", stats.LastSyncAt)
			}
			if stats.LastSyncError != "" {
				fmt.Printf("last sync error: %s\n", stats.LastSyncError)
			}
			fmt.Printf("uptime:          %s\n", stats.Uptime)
		},
	}

	// add commands
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)

	return rootCmd
}

func printAgenda(agenda *AgendaResponse) {
	switch {
	case agenda.Daily != nil:
		printSection("TODAY", agenda.Daily.Today)
		printSection("TOMORROW", agenda.Daily.Tomorrow)
		printSection("UPCOMING", agenda.Daily.Upcoming)
	case agenda.Weekly != nil:
		for _, g := range agenda.Weekly {
			printSection(g.Label, g.Events)
		}
	case agenda.Monthly != nil:
		for _, g := range agenda.Monthly {
			printSection(fmt.Sprintf("%s %d", g.Label, g.Year), g.Events)
		}
	}
}

func printSection(label string, events []model.Event) {
	fmt.Println(label)
	if len(events) == 0 {
		fmt.Println("  (nothing)")
		return
	}
	printEvents(events)
}

func printEvents(events []model.Event) {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			ev.Date.String(),
			ev.Title,
			string(ev.Category),
			ev.TimeRange,
			ev.ID,
		})
	}
	PrintTable([]string{"DATE", "TITLE", "CATEGORY", "TIME", "ID"}, rows)
}

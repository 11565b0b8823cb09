package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/study-planner/internal/client"
	"github.com/BuzzLyutic/study-planner/internal/model"
)

func roadmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Show saved learning roadmaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			records, err := e.api.Roadmaps(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved roadmaps.")
				return nil
			}

			latest, _ := cmd.Flags().GetBool("latest")
			if latest {
				records = records[:1]
			}
			for i, r := range records {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("-", 40))
				}
				printRoadmap(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	cmd.Flags().Bool("latest", false, "Only the most recent roadmap")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	cmd.AddCommand(generateRoadmapCmd())

	return cmd
}

func generateRoadmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and save a new learning roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			var req client.RoadmapRequest
			req.CareerGoal, _ = cmd.Flags().GetString("goal")
			req.CurrentLevel, _ = cmd.Flags().GetString("level")
			req.Timeframe, _ = cmd.Flags().GetString("timeframe")
			req.Interests, _ = cmd.Flags().GetString("interests")

			roadmap, err := e.api.GenerateRoadmap(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), roadmap)
			}
			printRoadmap(cmd.OutOrStdout(), model.RoadmapRecord{
				CareerGoal:   req.CareerGoal,
				CurrentLevel: req.CurrentLevel,
				Timeframe:    req.Timeframe,
				Roadmap:      roadmap,
			})
			return nil
		},
	}

	cmd.Flags().StringP("goal", "g", "", "Career goal, e.g. \"Data Scientist\"")
	cmd.Flags().StringP("level", "l", "beginner", "Current level (beginner, intermediate, advanced)")
	cmd.Flags().StringP("timeframe", "t", "6 months", "Time you have")
	cmd.Flags().StringP("interests", "i", "", "Specific interests")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cmd.MarkFlagRequired("goal")

	return cmd
}

func adviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advice [interests and goals]",
		Short: "Ask for career advice",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			input := strings.Join(args, " ")
			if input == "" {
				if input, err = prompt("Your interests and goals: "); err != nil {
					return err
				}
			}

			advice, err := e.api.CareerAdvice(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), advice)
			return nil
		},
	}
}

func printRoadmap(w io.Writer, r model.RoadmapRecord) {
	fmt.Fprintln(w, r.Roadmap.Title)
	fmt.Fprintf(w, "Goal: %s  Level: %s  Timeframe: %s\n", r.CareerGoal, r.CurrentLevel, r.Timeframe)
	if r.Roadmap.TotalDuration != "" {
		fmt.Fprintf(w, "Total duration: %s\n", r.Roadmap.TotalDuration)
	}

	for i, p := range r.Roadmap.Phases {
		fmt.Fprintf(w, "\n%d. %s", i+1, p.Phase)
		if p.Duration != "" {
			fmt.Fprintf(w, " (%s)", p.Duration)
		}
		fmt.Fprintln(w)
		if len(p.Skills) > 0 {
			fmt.Fprintf(w, "   Skills: %s\n", strings.Join(p.Skills, ", "))
		}
		for _, res := range p.Resources {
			fmt.Fprintf(w, "   - %s", res.Name)
			if res.URL != "" {
				fmt.Fprintf(w, " <%s>", res.URL)
			}
			fmt.Fprintln(w)
		}
		if len(p.Projects) > 0 {
			fmt.Fprintf(w, "   Projects: %s\n", strings.Join(p.Projects, ", "))
		}
	}
}

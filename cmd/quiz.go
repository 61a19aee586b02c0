package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/report"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Create and inspect a user's quizzes",
}

var quizCoreCmd = &cobra.Command{
	Use:   "core",
	Short: "Create or show the core quiz for a sport and position",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, sport, position, err := quizTarget(cmd)
		if err != nil {
			return err
		}
		var m *quiz.Manager
		return withServices(cmd, func(ctx context.Context) error {
			sess, err := m.CreateOrGetCoreQuiz(ctx, user, sport, position)
			if err != nil {
				return err
			}
			return report.Session(cmd.OutOrStdout(), sess)
		}, &m)
	},
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the next quiz once the previous one is passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, sport, position, err := quizTarget(cmd)
		if err != nil {
			return err
		}
		useAI, _ := cmd.Flags().GetBool("ai")

		var m *quiz.Manager
		return withServices(cmd, func(ctx context.Context) error {
			sess, err := m.GenerateNewQuiz(ctx, user, sport, position, quiz.GenerateOptions{UseAI: useAI})
			if err != nil {
				return err
			}
			return report.Session(cmd.OutOrStdout(), sess)
		}, &m)
	},
}

var quizSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List a user's quizzes and attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		if user == "" {
			return errors.New("--user is required")
		}
		f := quiz.SessionFilter{}
		f.Sport, _ = cmd.Flags().GetString("sport")
		f.Position, _ = cmd.Flags().GetString("position")
		if cmd.Flags().Changed("min-score") {
			n, _ := cmd.Flags().GetInt("min-score")
			f.MinScore = &n
		}

		var m *quiz.Manager
		return withServices(cmd, func(ctx context.Context) error {
			sessions, err := m.GetSessions(ctx, user, f)
			if err != nil {
				return err
			}
			return report.Sessions(cmd.OutOrStdout(), sessions)
		}, &m)
	},
}

var quizCanGenerateCmd = &cobra.Command{
	Use:   "can-generate",
	Short: "Tell whether the next quiz is unlocked",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, sport, position, err := quizTarget(cmd)
		if err != nil {
			return err
		}
		var m *quiz.Manager
		return withServices(cmd, func(ctx context.Context) error {
			p, err := m.Progress(ctx, user, sport, position)
			if err != nil {
				return err
			}
			return report.Progress(cmd.OutOrStdout(), p)
		}, &m)
	},
}

func init() {
	quizCmd.PersistentFlags().String("user", "", "User ID")
	quizCmd.PersistentFlags().String("sport", "", "Sport, e.g. soccer")
	quizCmd.PersistentFlags().String("position", "", "Position, e.g. goalkeeper")

	quizGenerateCmd.Flags().Bool("ai", false, "Generate every question with the configured AI provider")
	quizSessionsCmd.Flags().Int("min-score", 0, "Only list attempts scoring at least this much")

	quizCmd.AddCommand(quizCoreCmd)
	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizSessionsCmd)
	quizCmd.AddCommand(quizCanGenerateCmd)
}

func quizTarget(cmd *cobra.Command) (user, sport, position string, err error) {
	user, _ = cmd.Flags().GetString("user")
	sport, _ = cmd.Flags().GetString("sport")
	position, _ = cmd.Flags().GetString("position")
	if user == "" || sport == "" || position == "" {
		return "", "", "", errors.New("--user, --sport and --position are required")
	}
	return user, sport, position, nil
}

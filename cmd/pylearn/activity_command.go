package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/pylearn-backend/internal/app"
	"github.com/yungbote/pylearn-backend/internal/data/repos"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/services"
)

func newActivityCommand() *cobra.Command {
	var userFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent videos and quiz attempts for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userFlag) == "" {
				return fmt.Errorf("--user is required")
			}
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, err := app.OpenDatabase(log, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx := cmd.Context()
			db := svc.DB()
			userRepo := repos.NewUserRepo(db, log)

			userID, err := uuid.Parse(userFlag)
			if err != nil {
				u, lookupErr := userRepo.GetByUsername(dbctx.Context{Ctx: ctx}, userFlag)
				if lookupErr != nil {
					return fmt.Errorf("lookup user %q: %w", userFlag, lookupErr)
				}
				if u == nil {
					return fmt.Errorf("user %q not found", userFlag)
				}
				userID = u.ID
			}

			activity := services.NewActivityService(db, log, repos.NewVideoLogRepo(db, log), repos.NewQuizAttemptRepo(db, log))
			progress, err := activity.Progress(ctx, userID, limit)
			if err != nil {
				return err
			}
			printProgress(cmd.OutOrStdout(), progress)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "Username or user id")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows per table")
	return cmd
}

func printProgress(out io.Writer, p *services.Progress) {
	fmt.Fprintf(out, "Videos generated: %d\n", p.VideoCount)
	if len(p.Videos) > 0 {
		rows := make([][]string, 0, len(p.Videos))
		for _, v := range p.Videos {
			rows = append(rows, []string{v.CreatedAt.Format("2006-01-02 15:04"), v.Topic, v.ArtifactKey})
		}
		fmt.Fprintln(out, renderTable([]string{"When", "Topic", "Artifact"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))
	}

	fmt.Fprintf(out, "Quiz attempts: %d (overall %s)\n", p.Summary.Attempts, percent(p.Summary.Score, p.Summary.Total))
	if len(p.Attempts) > 0 {
		rows := make([][]string, 0, len(p.Attempts))
		for _, a := range p.Attempts {
			rows = append(rows, []string{
				a.CreatedAt.Format("2006-01-02 15:04"),
				a.Topic,
				strconv.Itoa(a.Score) + "/" + strconv.Itoa(a.Total),
				percent(int64(a.Score), int64(a.Total)),
			})
		}
		fmt.Fprintln(out, renderTable([]string{"When", "Topic", "Score", "%"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
	}
}

func percent(score, total int64) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", float64(score)*100/float64(total))
}

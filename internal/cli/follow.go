package cli

import (
	"fmt"
	"os"
	"time"

	"FaceBlur/internal/entity"
	websocketPkg "FaceBlur/pkg/websocket"
	"github.com/spf13/cobra"
)

func newFollowCmd() *cobra.Command {
	var (
		server string
		token  string
	)

	cmd := &cobra.Command{
		Use:   "follow <job-id>",
		Short: "Stream progress of a job running on the detection service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("FACEBLUR_TOKEN")
			}

			out := cmd.OutOrStdout()
			last, err := websocketPkg.FollowJob(cmd.Context(), server, args[0], websocketPkg.FollowOptions{
				Token: token,
			}, func(event entity.ProgressEvent) error {
				_, err := fmt.Fprintf(out, "%s  %s\n", event.Time.Local().Format(time.TimeOnly), describeEvent(event))
				return err
			})
			if err != nil {
				return err
			}

			if last.Stage != entity.StageComplete {
				return fmt.Errorf("job %s ended in stage %s", args[0], last.Stage)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:3000", "Detection service base URL")
	cmd.Flags().StringVar(&token, "token", "", "Access token sent as a bearer token (defaults to $FACEBLUR_TOKEN)")

	return cmd
}

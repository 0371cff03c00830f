package cli

import (
	"os"

	"FaceBlur/pkg/log"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "faceblur",
		Short: "Find faces in videos with Rekognition and collect them per timestamp",
		Long: `faceblur submits stored videos to AWS Rekognition face detection, waits for the
job to finish and collects every detected face into a timestamp index that a
blurring step can consume.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if os.Getenv("APP_ENV") == "" {
				_ = os.Setenv("APP_ENV", "cli")
			}

			logger := log.NewLogger()
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			} else if os.Getenv("LOG_LEVEL") == "" {
				logger.SetLevel(logrus.WarnLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newCheckCmd(),
		newDetectCmd(),
		newCollectCmd(),
		newFollowCmd(),
		newTokenCmd(),
	)

	return cmd
}

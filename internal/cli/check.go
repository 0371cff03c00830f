package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"FaceBlur/pkg/utils"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <video>",
		Short: "Check that a local video can be submitted for face detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", args[0])
			}

			name := filepath.Base(args[0])
			if err := utils.ValidateVideo(name, info.Size()); err != nil {
				var verr *utils.VideoValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("%s: %s", name, verr.Reason)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d bytes)\n", name, info.Size())
			return nil
		},
	}
}

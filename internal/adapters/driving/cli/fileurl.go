package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var fileURLThumb string

var fileURLCmd = &cobra.Command{
	Use:   "file-url <collection> <record-id> <filename>",
	Short: "Print the URL of a stored record file",
	Long: `Builds the download URL of a file attached to a record, optionally as a
thumbnail:

  pbcn file-url plugins abc123 logo.png --thumb 100x100`,
	Args: cobra.ExactArgs(3),
	RunE: runFileURL,
}

func init() {
	fileURLCmd.Flags().StringVar(&fileURLThumb, "thumb", "", "thumbnail size, e.g. 100x100")
	rootCmd.AddCommand(fileURLCmd)
}

func runFileURL(cmd *cobra.Command, args []string) error {
	if fileURL == nil {
		return errors.New("file URLs not configured")
	}

	u := fileURL(args[0], args[1], args[2], fileURLThumb)
	if u == "" {
		return errors.New("collection, record id and filename must not be blank")
	}
	cmd.Println(u)
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-sieve/internal/config"
	"github.com/kozaktomas/face-sieve/internal/extractor"
	"github.com/kozaktomas/face-sieve/internal/imaging"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Detect faces in a single image",
	Long: `Inspect an image: detect faces, print their bounding boxes and detection
scores, and compute perceptual hashes.

Examples:
  # Inspect with the remote embedding server
  face-sieve inspect photo.jpg

  # Inspect with the local dlib backend, JSON output
  face-sieve inspect photo.jpg --extractor dlib --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("extractor", "remote", "Face extractor backend: remote, dlib")
	inspectCmd.Flags().String("device", "", "Device preference for the remote extractor: auto, cpu, cuda")
	inspectCmd.Flags().Bool("json", false, "Output as JSON")
}

// inspectOutput is the JSON output structure for a single image.
type inspectOutput struct {
	File   string           `json:"file"`
	MIME   string           `json:"mime"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	PHash  string           `json:"phash"`
	DHash  string           `json:"dhash"`
	Faces  []extractor.Face `json:"faces"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	extractorName := mustGetString(cmd, "extractor")
	device := mustGetString(cmd, "device")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()

	ext, cleanup, err := newExtractor(cfg, extractorName, device)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := os.ReadFile(imagePath) //nolint:gosec // path comes from the CLI invocation
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	img, _, err := imaging.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	hashes := imaging.ComputeHashes(img)

	faces, err := ext.ExtractFaces(context.Background(), data)
	if err != nil {
		return fmt.Errorf("face extraction failed: %w", err)
	}

	bounds := img.Bounds()
	out := inspectOutput{
		File:   imagePath,
		MIME:   imaging.DetectMIMEType(data),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		PHash:  hashes.PHashHex(),
		DHash:  hashes.DHashHex(),
		Faces:  faces,
	}

	if jsonOutput {
		return outputJSON(out)
	}

	fmt.Printf("File:   %s\n", out.File)
	fmt.Printf("Type:   %s (%dx%d)\n", out.MIME, out.Width, out.Height)
	fmt.Printf("pHash:  %s\n", out.PHash)
	fmt.Printf("dHash:  %s\n", out.DHash)
	fmt.Printf("Faces:  %d\n", len(faces))

	if len(faces) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tBBOX\tSCORE\tDIM")
		for _, f := range faces {
			bbox := "-"
			if len(f.BBox) == 4 {
				bbox = fmt.Sprintf("[%.0f %.0f %.0f %.0f]", f.BBox[0], f.BBox[1], f.BBox[2], f.BBox[3])
			}
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\n", f.Index, bbox, f.Score, f.Dim)
		}
		w.Flush()
	}

	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-sieve",
	Short: "A CLI tool for sifting photos by face",
	Long: `Face Sieve copies images containing a specific person's face from a
dataset folder to an output folder. Matching uses face embeddings from a
pretrained model and a Euclidean distance tolerance.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

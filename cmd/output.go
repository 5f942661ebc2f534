package cmd

import (
	"encoding/json"
	"fmt"
	"os"
)

// outputJSON marshals v with indentation and writes it to stdout.
func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exampleDir string

const exampleCSV = `IDS;EN;LOCID
ID1;Tap on the biggest flower.;LEVEL_TEXT_1
ID1;Look closer at the petals.;HINT_1_1
ID2;Lets find Tricky Lily;LEVEL_TEXT_2
ID3;I have always worry about the sky.;LEVEL_TEXT_3
ID4;Little Little Tiki Taka;LEVEL_TEXT_4
ID5;Lary not merry me;LEVEL_TEXT_5
ID6;Where is the sun?;LEVEL_TEXT_6
ID6;You did it!;END_6
`

const exampleChars = `[
  {
    "Character Name (EN)": "Lily",
    "TR": "Bediş",
    "FR": "Lili",
    "DE": "Lilli"
  },
  {
    "Character Name (EN)": "Granny Amy",
    "TR": "Ayşe Nine",
    "FR": "Mamie Amy",
    "DE": "Oma Amy"
  },
  {
    "Character Name (EN)": "Uncle Bubba",
    "TR": "Temel Amca",
    "FR": "Oncle Bubba",
    "DE": "Onkel Bubba"
  }
]
`

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Write example input files",
	Long: `Write an example input CSV and character file into the target directory,
showing the expected column layout and character-file schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(exampleDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}

		csvPath := filepath.Join(exampleDir, "example.csv")
		if err := os.WriteFile(csvPath, []byte(exampleCSV), 0644); err != nil {
			return fmt.Errorf("failed to write example CSV: %w", err)
		}

		charsPath := filepath.Join(exampleDir, "example_chars.json")
		if err := os.WriteFile(charsPath, []byte(exampleChars), 0644); err != nil {
			return fmt.Errorf("failed to write example character file: %w", err)
		}

		fmt.Printf("Wrote %s and %s\n", csvPath, charsPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exampleCmd)

	exampleCmd.Flags().StringVarP(&exampleDir, "dir", "d", ".", "Directory to write the example files into")
}

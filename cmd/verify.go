package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/eunjilab/saju-admin/internal/verify"
)

var verifyWrite bool

var verifyCmd = &cobra.Command{
	Use:   "verify <facts.txt> <report.md>",
	Short: "Verify a generated report against its source facts",
	Long:  "Extracts facts from both files, reports mismatches, and optionally writes the auto-fixed document back.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read facts file %s", args[0])
		}
		document, err := os.ReadFile(args[1])
		if err != nil {
			return eris.Wrapf(err, "read report file %s", args[1])
		}

		report := verify.Verify(string(source), string(document))

		if report.IsValid {
			fmt.Println("✅ 검증 통과")
			return nil
		}

		fmt.Printf("⚠️ 오류 %d건 (자동수정 %d건, 검수필요 %d건)\n",
			report.Summary.TotalErrors,
			report.Summary.AutoFixed,
			report.Summary.NeedsReview,
		)
		for _, m := range report.Errors {
			fmt.Printf("  - %s\n", m.Message)
		}

		if verifyWrite && report.FixedDocument != string(document) {
			if err := os.WriteFile(args[1], []byte(report.FixedDocument), 0o644); err != nil {
				return eris.Wrapf(err, "write fixed report %s", args[1])
			}
			fmt.Printf("수정된 보고서 저장: %s\n", args[1])
		}

		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyWrite, "write", false, "write the auto-fixed document back to the report file")
	rootCmd.AddCommand(verifyCmd)
}

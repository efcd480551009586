package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resource-curator/internal/schemas"
	"github.com/jonathan/resource-curator/internal/types"
)

type importOptions struct {
	email string
	name  string
	file  string
}

func newImportAnswersCmd(root *rootOptions) *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import-answers",
		Short: "Store onboarding answers from a JSON file",
		Long: `Reads onboarding answers from --file and stores them as a new submission.
The file holds either a list of {question_id, answer} records or an object
with "email" and "answers". The user is created when the email is unknown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readAnswersFile(opts.file, opts.email)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			sub, err := a.service.ImportAnswers(cmd.Context(), opts.name, req)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d answers for %s (user %s, submission %s)\n",
				len(sub.Answers), sub.Email, sub.UserID, sub.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "User email (overrides the file's email)")
	cmd.Flags().StringVar(&opts.name, "name", "", "User name, used when the user is created")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the answers JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readAnswersFile loads and schema-validates an answers document.
func readAnswersFile(path, email string) (*types.SubmitAnswersRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	var req types.SubmitAnswersRequest
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &req.Answers); err != nil {
			return nil, fmt.Errorf("failed to parse answers file: %w", err)
		}
	} else if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse answers file: %w", err)
	}
	if email != "" {
		req.Email = email
	}
	if req.Email == "" {
		return nil, fmt.Errorf("--email is required when the file has no email")
	}

	doc, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	if err := schemas.Validate(schemas.AnswersSchema, string(doc)); err != nil {
		return nil, err
	}
	return &req, nil
}

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/req"
)

func newInspectCmd() *cobra.Command {
	var rulesPath string
	var strict bool
	var addEmpty bool

	cmd := &cobra.Command{
		Use:   "inspect [request-file]",
		Short: "Normalize a raw HTTP/1.x request and print it as JSON",
		Long: "Normalize a raw HTTP/1.x request read from request-file, or stdin when it is omitted or \"-\",\n" +
			"validate it against the rules in --rules and print the result as JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			rules := filter.Rules{}
			if rulesPath != "" {
				var err error
				if rules, err = loadRules(rulesPath); err != nil {
					return err
				}
			}

			nr, err := inspect(in, rules, req.WithAddEmpty(addEmpty))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(nr.Snapshot()); err != nil {
				return err
			}

			if strict {
				return nr.Errors()
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Path to a YAML rules file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any field is invalid")
	cmd.Flags().BoolVar(&addEmpty, "add-empty", true, "Record declared fields missing from the request as absent")

	return cmd
}

// inspect parses one HTTP/1.x request from in and normalizes it.
func inspect(in io.Reader, rules filter.Rules, opts ...req.Option) (*req.Request, error) {
	r, err := http.ReadRequest(bufio.NewReader(in))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty request", trailhead.ErrMissingData)
		}
		return nil, fmt.Errorf("%w: %s", trailhead.ErrBadFormat, err)
	}
	defer r.Body.Close()

	return req.FromHTTP(r, append([]req.Option{req.WithRules(rules)}, opts...)...)
}

func loadRules(path string) (filter.Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rules, err := filter.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("failed loading %s: %w", path, err)
	}

	return rules, nil
}

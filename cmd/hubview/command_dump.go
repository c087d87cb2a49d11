package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"hubview/internal/config"
	"hubview/internal/logging"
	"hubview/internal/view"
)

const (
	dumpFormatText = "text"
	dumpFormatJSON = "json"

	defaultDumpTimeout = 30 * time.Second
)

// DumpCommand loads one snapshot of the hub and prints it, without the UI.
type DumpCommand struct {
	stdout io.Writer
	stderr io.Writer
}

type dumpGroup struct {
	Label    string       `json:"label"`
	Entities []dumpEntity `json:"entities"`
}

type dumpEntity struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	RawState string `json:"raw_state"`
	Class    string `json:"class"`
	Action   string `json:"action,omitempty"`
}

func NewDumpCommand(stdout, stderr io.Writer) *DumpCommand {
	return &DumpCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *DumpCommand) Run(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", dumpFormatText, "output format: text|json")
	timeout := fs.Duration("timeout", defaultDumpTimeout, "give up after this long")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resolvedFormat, err := resolveDumpFormat(*format)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(c.stderr, logging.ParseLevel(cfg.LogLevel()))
	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	model, _, err := engine.Snapshot(ctx)
	if err != nil {
		return err
	}

	switch resolvedFormat {
	case dumpFormatJSON:
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(dumpGroups(model))
	default:
		printModel(c.stdout, model)
		return nil
	}
}

func printModel(output io.Writer, model view.Model) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "GROUP\tENTITY\tNAME\tSTATE")
	for _, group := range model.Groups {
		for _, entity := range group.Entities {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", group.Label, entity.EntityID, entity.Name, entity.State)
		}
	}
	_ = writer.Flush()
}

func dumpGroups(model view.Model) []dumpGroup {
	groups := make([]dumpGroup, 0, len(model.Groups))
	for _, group := range model.Groups {
		out := dumpGroup{Label: group.Label, Entities: make([]dumpEntity, 0, len(group.Entities))}
		for _, entity := range group.Entities {
			out.Entities = append(out.Entities, dumpEntity{
				EntityID: entity.EntityID,
				Name:     entity.Name,
				State:    entity.State,
				RawState: entity.StateRaw,
				Class:    string(entity.Class),
				Action:   string(entity.Action),
			})
		}
		groups = append(groups, out)
	}
	return groups
}

func resolveDumpFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", dumpFormatText:
		return dumpFormatText, nil
	case dumpFormatJSON:
		return dumpFormatJSON, nil
	default:
		return "", errors.New("invalid format: must be text or json")
	}
}

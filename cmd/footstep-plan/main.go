// Package main plans footsteps for request documents from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"go.viam.com/footsteps/footstepplan"
	"go.viam.com/footsteps/logging"
	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/utils"
)

const (
	flagParams   = "params"
	flagDebug    = "debug"
	flagLogLevel = "log-level"
	flagTrace    = "trace"
	flagTimeout  = "timeout"
	flagParallel = "parallel"
	flagFormat   = "format"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "footstep-plan",
		Usage:     "plan biped footsteps over planar region terrain",
		ArgsUsage: "REQUEST_FILE...",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagParams,
				Aliases: []string{"p"},
				Usage:   "load planner parameters from `FILE`",
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Usage: "timeout for requests which do not set one (defaults to the parameter file's)",
			},
			&cli.IntFlag{
				Name:  flagParallel,
				Value: 4,
				Usage: "number of requests planned at once",
			},
			&cli.StringFlag{
				Name:  flagFormat,
				Value: "yaml",
				Usage: "output `FORMAT`, yaml or table",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "minimum log `LEVEL` (debug, info, warn or error)",
			},
			&cli.StringSliceFlag{
				Name:  flagTrace,
				Usage: "log planner debug output for the request `FILE` only",
			},
		},
		Action: planAction,
		Commands: []*cli.Command{
			{
				Name:  "defaults",
				Usage: "print the default planner parameters",
				Action: func(c *cli.Context) error {
					return yaml.NewEncoder(c.App.Writer).Encode(footstepplan.NewDefaultParameters())
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of request files",
				Action: func(c *cli.Context) error {
					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(footstepplan.RequestSchema())
				},
			},
		},
	}
}

type footstepOutput struct {
	Side string  `yaml:"side"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
	Yaw  float64 `yaml:"yaw"`
}

type planOutput struct {
	Request    string                    `yaml:"request"`
	RequestID  int                       `yaml:"request_id"`
	PlanID     string                    `yaml:"plan_id"`
	Result     string                    `yaml:"result"`
	Iterations int                       `yaml:"iterations"`
	Rejections int                       `yaml:"rejections"`
	Elapsed    string                    `yaml:"elapsed"`
	Footsteps  []footstepOutput          `yaml:"footsteps"`
	BodyPath   []*spatialmath.PoseConfig `yaml:"body_path,omitempty"`
}

func newPlanOutput(path string, status *footstepplan.Status) planOutput {
	out := planOutput{
		Request:    path,
		RequestID:  status.RequestID,
		PlanID:     status.PlanID.String(),
		Result:     status.Result.String(),
		Iterations: status.Statistics.Iterations,
		Rejections: status.Statistics.TotalRejections(),
		Elapsed:    status.Elapsed.String(),
	}
	for _, step := range status.Footsteps {
		pt := step.Transform.Point()
		out.Footsteps = append(out.Footsteps, footstepOutput{
			Side: step.Side.String(),
			X:    pt.X,
			Y:    pt.Y,
			Z:    pt.Z,
			Yaw:  spatialmath.Yaw(step.Transform),
		})
	}
	for _, wp := range status.BodyPathWaypoints {
		out.BodyPath = append(out.BodyPath, spatialmath.NewPoseConfig(wp))
	}
	return out
}

// renderTable prints one row per footstep, grouped by request.
func renderTable(outputs []planOutput) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Request", "Result", "#", "Side", "Position", "Yaw"})
	for _, out := range outputs {
		if len(out.Footsteps) == 0 {
			t.AppendRow(table.Row{out.Request, out.Result, "", "", "", ""})
		}
		for i, step := range out.Footsteps {
			t.AppendRow(table.Row{
				out.Request,
				out.Result,
				i + 1,
				step.Side,
				fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", step.X, step.Y, step.Z),
				fmt.Sprintf("%.1f", utils.RadToDeg(step.Yaw)),
			})
		}
		t.AppendSeparator()
	}
	return t.Render()
}

func planAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one request file is required")
	}
	format := c.String(flagFormat)
	if format != "yaml" && format != "table" {
		return errors.Errorf("unknown output format %q", format)
	}
	logger := logging.NewLogger("footstep-plan")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("footstep-plan")
	} else {
		level, err := logging.LevelFromString(c.String(flagLogLevel))
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}
	traced := make(map[string]bool)
	for _, path := range c.StringSlice(flagTrace) {
		traced[filepath.Clean(path)] = true
	}

	params := footstepplan.NewDefaultParameters()
	if path := c.String(flagParams); path != "" {
		var err error
		if params, err = footstepplan.LoadParametersFile(path); err != nil {
			return err
		}
	}
	timeout := params.Timeout
	if c.IsSet(flagTimeout) {
		timeout = c.Duration(flagTimeout)
	}

	paths := c.Args().Slice()
	requests := make([]*footstepplan.Request, len(paths))
	for i, path := range paths {
		req, err := footstepplan.LoadRequestFile(path, timeout)
		if err != nil {
			return err
		}
		requests[i] = req
	}

	// sessions plan one request at a time, so each request gets its own
	outputs := make([]planOutput, len(paths))
	group, ctx := errgroup.WithContext(c.Context)
	group.SetLimit(max(1, c.Int(flagParallel)))
	for i, req := range requests {
		i, req := i, req
		group.Go(func() error {
			name := filepath.Base(paths[i])
			session, err := footstepplan.NewSession(params, logger.Sublogger(name))
			if err != nil {
				return err
			}
			reqCtx := ctx
			if traced[filepath.Clean(paths[i])] {
				reqCtx = logging.EnableDebugMode(ctx, name)
			}
			status, err := session.SubmitRequest(reqCtx, req)
			if err != nil {
				return errors.Wrapf(err, "planning %q", paths[i])
			}
			outputs[i] = newPlanOutput(paths[i], status)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	if format == "table" {
		_, err := fmt.Fprintln(c.App.Writer, renderTable(outputs))
		return err
	}
	return yaml.NewEncoder(c.App.Writer).Encode(outputs)
}

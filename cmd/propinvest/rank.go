package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/ranking"
	"propinvest/internal/domain/value"
	"propinvest/internal/infrastructure/csvsource"
)

func rankCommand() *cli.Command {
	return &cli.Command{
		Name:  "rank",
		Usage: "Rank areas from a feature table",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "features",
				Aliases: []string{"i"},
				Value:   cli.NewStringSlice(defaultFeaturesPath, defaultFeaturesSamplePath),
				Usage:   "Feature CSV; the first existing file is used",
			},
			&cli.StringSliceFlag{
				Name:    "weight",
				Aliases: []string{"w"},
				Usage:   "Factor weight as factor=value, repeatable",
			},
			&cli.IntFlag{
				Name:    "top",
				Aliases: []string{"n"},
				Value:   10, //nolint:mnd
				Usage:   "Number of areas to print, 0 prints all",
			},
		},
		Action: runRank,
	}
}

type rankedArea struct {
	Rank          int                `json:"rank"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Score         float64            `json:"score"`
	DisplayScore  float64            `json:"displayScore"`
	Contributions map[string]float64 `json:"contributions"`
}

func runRank(c *cli.Context) error {
	rows, path, err := csvsource.ReadFeaturesFile(c.StringSlice("features")...)
	if err != nil {
		return fmt.Errorf("csvsource.ReadFeaturesFile: %w", err)
	}

	raw, err := parseWeightFlags(c.StringSlice("weight"))
	if err != nil {
		return err
	}

	weights, ignored := value.WeightsFromMap(raw)
	for _, k := range ignored {
		warnf(c, "unknown factor %q ignored", k)
	}

	ranked, err := ranking.NewService(nil, nil).RankRows(c.Context, rows, weights, c.Int("top"))
	if err != nil {
		return fmt.Errorf("ranking.RankRows: %w", err)
	}

	out := make([]rankedArea, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, newRankedArea(r))
	}

	if c.String("format") == formatJSON {
		return writeJSON(c, out)
	}

	t := newTable(c)
	t.row("source", path)
	t.row("areas", strconv.Itoa(len(rows)))
	t.blank()
	t.row("#", "code", "name", "score", "0-100")

	for _, a := range out {
		t.row(
			strconv.Itoa(a.Rank),
			a.Code,
			a.Name,
			strconv.FormatFloat(a.Score, 'f', 3, 64),
			strconv.FormatFloat(a.DisplayScore, 'f', 0, 64),
		)
	}

	return t.flush()
}

func newRankedArea(r entity.ScoredRow) rankedArea {
	contributions := make(map[string]float64, len(r.Contributions))
	for f, v := range r.Contributions {
		contributions[f.String()] = v
	}

	return rankedArea{
		Rank:          r.Rank,
		Code:          r.Code,
		Name:          r.Name,
		Score:         r.Score,
		DisplayScore:  r.DisplayScore,
		Contributions: contributions,
	}
}

func parseWeightFlags(flags []string) (map[string]float64, error) {
	raw := make(map[string]float64, len(flags))

	for _, f := range flags {
		name, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q: expected factor=value", f)
		}

		w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", f, err)
		}

		raw[strings.TrimSpace(name)] = w
	}

	return raw, nil
}

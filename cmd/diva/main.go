// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/facebookincubator/diva"
	"github.com/facebookincubator/diva/datagen"
	"github.com/facebookincubator/diva/refs"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "diva",
		Usage: "build, query, and benchmark a DIVA range filter",
		Commands: []*cli.Command{
			buildCommand(),
			queryCommand(),
			benchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "build a DIVA filter from keys (file, stdin, or synthetic) and describe it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"in", "i"},
				Usage:   "file of newline-separated u64 keys (default is stdin)",
			},
			&cli.IntFlag{
				Name:  "synthetic",
				Usage: "generate N synthetic keys instead of reading input",
			},
			&cli.StringFlag{
				Name:  "distribution",
				Value: "uniform",
				Usage: "synthetic key distribution: uniform or smooth",
			},
			&cli.IntFlag{
				Name:  "target-bracket",
				Usage: "approximate keys per bracket",
			},
			&cli.Float64Flag{
				Name:  "fpr",
				Usage: "target per-bracket false-positive rate",
			},
		},
		Action: func(c *cli.Context) error {
			keys, err := loadOrGenerateKeys(c)
			if err != nil {
				return err
			}

			cfg := diva.Config{
				TargetBracket: c.Int("target-bracket"),
				FPR:           c.Float64("fpr"),
			}

			start := time.Now()
			filter := diva.Build(keys, cfg)
			log.Printf("built diva filter over %d keys in %s", len(keys), time.Since(start))
			filter.Explain()
			return nil
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "run a point or range query against synthetic keys",
		ArgsUsage: "<key> | <lo> <hi>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "synthetic",
				Value: 100000,
				Usage: "number of synthetic keys to build the filter from",
			},
			&cli.BoolFlag{
				Name:  "range",
				Usage: "treat the arguments as a [lo, hi] range query instead of a point query",
			},
		},
		Action: func(c *cli.Context) error {
			keys := datagen.Uniform(c.Int("synthetic"), 1)
			filter := diva.Build(keys, diva.Config{})

			if c.Bool("range") {
				if c.NArg() != 2 {
					return fmt.Errorf("query --range requires exactly 2 arguments: lo hi")
				}
				lo, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
				if err != nil {
					return err
				}
				hi, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
				if err != nil {
					return err
				}
				found := filter.RangeQuery(lo, hi)
				fmt.Printf("range [%d, %d]: %t\n", lo, hi, found)
				return nil
			}

			if c.NArg() != 1 {
				return fmt.Errorf("query requires exactly 1 argument: key")
			}
			k, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
			if err != nil {
				return err
			}
			found := filter.PointQuery(k)
			fmt.Printf("key %d: %t\n", k, found)
			return nil
		},
	}
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "compare DIVA's observed false-positive rate against a reference Bloom filter",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "keys",
				Value: 100000,
				Usage: "number of indexed keys",
			},
			&cli.IntFlag{
				Name:  "probes",
				Value: 100000,
				Usage: "number of non-member probe queries",
			},
			&cli.Float64Flag{
				Name:  "fpr",
				Value: 0.01,
				Usage: "target false-positive rate for both filters",
			},
		},
		Action: func(c *cli.Context) error {
			n := c.Int("keys")
			fpr := c.Float64("fpr")

			keys := datagen.Smooth(n, 7)
			present := make(map[uint64]struct{}, n)
			for _, k := range keys {
				present[k] = struct{}{}
			}

			divaStart := time.Now()
			filter := diva.Build(keys, diva.Config{FPR: fpr})
			log.Printf("diva: built %d keys in %s (%d brackets)", n, time.Since(divaStart), filter.BracketCount())

			bloomStart := time.Now()
			bloomRef := refs.NewBloomRef(uint(n), fpr)
			for _, k := range keys {
				bloomRef.Add(k)
			}
			log.Printf("bloom: built %d keys in %s", n, time.Since(bloomStart))

			rng := rand.New(rand.NewSource(42))
			probes := c.Int("probes")
			var divaFP, bloomFP, tested int
			for i := 0; i < probes; i++ {
				k := rng.Uint64()
				if _, ok := present[k]; ok {
					continue
				}
				tested++
				if filter.PointQuery(k) {
					divaFP++
				}
				if bloomRef.Test(k) {
					bloomFP++
				}
			}

			fmt.Printf("probed %d non-member keys\n", tested)
			fmt.Printf("diva observed FPR:  %.5f\n", float64(divaFP)/float64(tested))
			fmt.Printf("bloom observed FPR: %.5f\n", float64(bloomFP)/float64(tested))
			return nil
		},
	}
}

func loadOrGenerateKeys(c *cli.Context) ([]uint64, error) {
	if n := c.Int("synthetic"); n > 0 {
		switch c.String("distribution") {
		case "smooth":
			return datagen.Smooth(n, 1), nil
		case "uniform", "":
			return datagen.Uniform(n, 1), nil
		default:
			return nil, fmt.Errorf("unknown distribution %q", c.String("distribution"))
		}
	}

	var reader io.Reader
	if c.IsSet("input") {
		f, err := os.Open(c.String("input"))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = f
	} else {
		reader = os.Stdin
	}

	var keys []uint64
	rdr := bufio.NewScanner(reader)
	for rdr.Scan() {
		line := strings.TrimSpace(rdr.Text())
		if line == "" {
			continue
		}
		k, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: %w", line, err)
		}
		keys = append(keys, k)
	}
	if err := rdr.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

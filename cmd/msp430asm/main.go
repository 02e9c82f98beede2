package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/urfave/cli.v2"

	"github.com/master-g/msp430/pkg/asm"
)

// osFileSystem resolves .include paths against the current working
// directory, the only FileSystem the command-line tool needs.
type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) (string, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func parseOrigin(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func main() {
	app := &cli.App{
		Name:    "msp430asm",
		Usage:   "Assemble MSP430 source read from stdin",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "origin",
				Usage: "start-of-code address (pcStart)",
				Value: "0xc000",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "dump the assembled bytes as hex before the base64 line",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "print the listing before the base64 line",
			},
		},
		Action: func(c *cli.Context) error {
			source, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Println("<FAILURE>")
				return cli.Exit(err, 1)
			}
			pcStart, err := parseOrigin(c.String("origin"))
			if err != nil {
				fmt.Println("<FAILURE>")
				return cli.Exit(err, 1)
			}

			result := asm.Assemble(string(source), "stdin", osFileSystem{}, pcStart)
			if result.Failed() {
				fmt.Println("<FAILURE>")
				return cli.Exit("assembly failed", 1)
			}

			if c.Bool("list") {
				fmt.Println(result.Listing())
			}

			bytes := result.Image.Encode()
			if c.Bool("debug") {
				fmt.Println(hex.EncodeToString(bytes))
			}
			fmt.Println(base64.StdEncoding.EncodeToString(bytes))
			return nil
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

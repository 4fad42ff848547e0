package main

import (
	"fmt"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/k2tools/tpf"
	"github.com/k2tools/tpf/aperture"
	"github.com/k2tools/tpf/render"
	"github.com/urfave/cli/v2"
)

const defaultDB = "lightcurve.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openFile(c *cli.Context) (*tpf.File, error) {
	f, err := tpf.Open(c.Args().First())
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return f, nil
}

func writeImage(file string, encode func(*os.File) error) error {
	out, err := os.Create(file)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := encode(out); err != nil {
		out.Close()
		os.Remove(file)
		return cli.NewExitError(err, 1)
	}
	return out.Close()
}

func main() {
	app := cli.NewApp()

	app.Name = "tpf"
	app.Usage = "K2 target pixel file utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"TPF_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to light curve database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "fetch",
			Usage:     "Download a target pixel file",
			ArgsUsage: "URL FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := tpf.Fetch(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "header",
			Usage:     "Print the primary header and file dimensions",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := openFile(c)
				if err != nil {
					return err
				}

				keys := make([]string, 0, len(f.Keys))
				for k := range f.Keys {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					if v := f.Keys[k]; v != nil {
						fmt.Printf("%-8s = %v\n", k, v)
					}
				}

				rows, cols := f.Shape()
				fmt.Printf("stamp    = %dx%d pixels, %d cadences\n", rows, cols, f.NumCadences())

				return nil
			},
		},
		{
			Name:      "cadence",
			Usage:     "Render one cadence as a grayscale PNG",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "index",
					Aliases: []string{"i"},
					Usage:   "cadence index",
				},
				&cli.IntFlag{
					Name:    "scale",
					Aliases: []string{"s"},
					Value:   20,
					Usage:   "output pixels per stamp pixel",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := openFile(c)
				if err != nil {
					return err
				}

				grid, err := f.FluxAt(c.Int("index"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m := render.Frame(grid, c.Int("scale"))

				return writeImage(c.Args().Get(1), func(out *os.File) error {
					return png.Encode(out, m)
				})
			},
		},
		{
			Name:      "mask",
			Usage:     "Render one aperture bit as a two-color PNG",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:    "bit",
					Aliases: []string{"b"},
					Value:   aperture.BitAperture,
					Usage:   "bit position, counted from the least-significant bit",
				},
				&cli.IntFlag{
					Name:    "scale",
					Aliases: []string{"s"},
					Value:   20,
					Usage:   "output pixels per stamp pixel",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := openFile(c)
				if err != nil {
					return err
				}

				bits, err := f.Aperture.Decode(c.Uint("bit"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m := render.MaskImage(bits, c.Int("scale"))

				return writeImage(c.Args().Get(1), func(out *os.File) error {
					return png.Encode(out, m)
				})
			},
		},
		{
			Name:      "bin",
			Usage:     "Print the binary representation of a mask value",
			ArgsUsage: "VALUE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				v, err := strconv.ParseInt(c.Args().First(), 10, 64)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				s, err := aperture.BinaryString(v)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Println(s)

				return nil
			},
		},
		{
			Name:      "animate",
			Usage:     "Render all cadences as an animated GIF",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "scale",
					Aliases: []string{"s"},
					Value:   20,
					Usage:   "output pixels per stamp pixel",
				},
				&cli.IntFlag{
					Name:    "delay",
					Aliases: []string{"d"},
					Value:   10,
					Usage:   "inter-frame delay in 1/100ths of a second",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := openFile(c)
				if err != nil {
					return err
				}

				return writeImage(c.Args().Get(1), func(out *os.File) error {
					return render.Animate(out, f.Flux, c.Int("scale"), c.Int("delay"))
				})
			},
		},
		{
			Name:      "export",
			Usage:     "Extract the light curve and store it in the database",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "target name, defaults to the EPIC identifier",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := openFile(c)
				if err != nil {
					return err
				}

				k, err := tpf.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer k.Close()

				if err := k.Export(c.String("name"), f); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "plot",
			Usage:     "Plot the light curve",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "plot title, defaults to the EPIC identifier",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := openFile(c)
				if err != nil {
					return err
				}

				samples, err := f.LightCurve()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				name := c.String("name")
				if name == "" {
					name = fmt.Sprintf("EPIC %d", f.KeplerID())
				}

				if err := tpf.PlotLightCurve(name, samples, c.Args().Get(1)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

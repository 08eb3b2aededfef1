// Package options holds the probe command's settings: command-line flags,
// optionally layered over a YAML file named by -config.
package options

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Surfaces the probe can publish to without a caller-provided object.
const (
	SurfaceSharedMemory = "shm"
	SurfaceEGLImage     = "eglimage"
)

type ProbeOptions struct {
	Platform *string
	Width    *int
	Height   *int
	Surface  *string
	ShmName  *string
	Output   *string
	Scale    *float64
	Config   *string
	Hold     *bool
	Verbose  *bool
	Help     *bool
}

// File is the YAML form of the options. Zero fields are left to the
// flag defaults.
type File struct {
	Platform string  `yaml:"platform,omitempty"`
	Width    int     `yaml:"width,omitempty"`
	Height   int     `yaml:"height,omitempty"`
	Surface  string  `yaml:"surface,omitempty"`
	ShmName  string  `yaml:"shm_name,omitempty"`
	Output   string  `yaml:"output,omitempty"`
	Scale    float64 `yaml:"scale,omitempty"`
	Hold     bool    `yaml:"hold,omitempty"`
	Verbose  bool    `yaml:"verbose,omitempty"`
}

// Register binds the options to fs with their defaults.
func Register(fs *flag.FlagSet) *ProbeOptions {
	return &ProbeOptions{
		Platform: fs.String("platform", "", "Platform to open: cgl, glx, egl or wgl (first available if empty)"),
		Width:    fs.Int("width", 256, "Width of the main context"),
		Height:   fs.Int("height", 256, "Height of the main context"),
		Surface:  fs.String("surface", SurfaceSharedMemory, "Surface to publish into: shm or eglimage"),
		ShmName:  fs.String("shm", "gosharedgl-probe", "Shared memory segment name for -surface=shm"),
		Output:   fs.String("output", "probe.png", "PNG file the published frame is written to"),
		Scale:    fs.Float64("scale", 1, "Scale factor applied to the PNG"),
		Config:   fs.String("config", "", "YAML file with default option values"),
		Hold:     fs.Bool("hold", false, "Keep the shared memory segment until Enter is pressed"),
		Verbose:  fs.Bool("verbose", false, "Log lifecycle and debug events to stderr"),
		Help:     fs.Bool("help", false, "Show help message"),
	}
}

// Load reads a YAML options file. Unknown keys are an error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// Merge copies non-zero fields of f into options whose flag was not set
// on the command line. set holds the names of flags that were.
func (o *ProbeOptions) Merge(f *File, set map[string]bool) {
	str := func(name string, dst *string, v string) {
		if v != "" && !set[name] {
			*dst = v
		}
	}
	num := func(name string, dst *int, v int) {
		if v != 0 && !set[name] {
			*dst = v
		}
	}
	str("platform", o.Platform, f.Platform)
	num("width", o.Width, f.Width)
	num("height", o.Height, f.Height)
	str("surface", o.Surface, f.Surface)
	str("shm", o.ShmName, f.ShmName)
	str("output", o.Output, f.Output)
	if f.Scale != 0 && !set["scale"] {
		*o.Scale = f.Scale
	}
	if f.Hold && !set["hold"] {
		*o.Hold = true
	}
	if f.Verbose && !set["verbose"] {
		*o.Verbose = true
	}
}

// Validate checks values that flag parsing cannot.
func (o *ProbeOptions) Validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	if *o.Scale <= 0 {
		return fmt.Errorf("invalid scale %g", *o.Scale)
	}
	switch strings.ToLower(*o.Surface) {
	case SurfaceSharedMemory:
		if *o.ShmName == "" {
			return errors.New("-surface=shm needs a segment name")
		}
	case SurfaceEGLImage:
	default:
		return fmt.Errorf("unknown surface %q", *o.Surface)
	}
	if *o.Output == "" {
		return errors.New("no output file")
	}
	return nil
}

// Parse parses args, layers the -config file under them and validates
// the result.
func Parse(name string, args []string) (*ProbeOptions, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	o := Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if *o.Help {
		return o, fs, nil
	}

	if *o.Config != "" {
		f, err := Load(*o.Config)
		if err != nil {
			return nil, fs, err
		}
		set := make(map[string]bool)
		fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
		o.Merge(f, set)
	}
	*o.Surface = strings.ToLower(*o.Surface)
	if err := o.Validate(); err != nil {
		return nil, fs, err
	}
	return o, fs, nil
}

// Command glprobe opens a platform context, draws a test pattern into a
// rasterization context, publishes it and writes the published frame to a
// PNG file.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/richinsley/gosharedgl/frame"
	"github.com/richinsley/gosharedgl/glcontext"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/options"
	"github.com/richinsley/gosharedgl/raster"
	"github.com/richinsley/gosharedgl/sharedmemory"
)

var _ glcontext.Section = (*sharedmemory.SharedMemory)(nil)

func init() {
	// GL contexts are current per OS thread.
	runtime.LockOSThread()
}

func main() {
	opts, fs, err := options.Parse(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("glprobe: %v", err)
	}
	if *opts.Help {
		fmt.Println("Shared GL context probe")
		fs.PrintDefaults()
		return
	}

	if *opts.Verbose {
		graphics.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(opts); err != nil {
		log.Fatalf("glprobe: %v", err)
	}
}

func run(opts *options.ProbeOptions) error {
	size := graphics.Sz(*opts.Width, *opts.Height)

	c, release, err := openContext(*opts.Platform, size)
	if err != nil {
		return err
	}
	defer release()
	defer c.Destroy()
	log.Printf("Opened %s context %dx%d (GL %s)", c.Platform(), size.Width, size.Height,
		c.Functions().GetString(gles.VERSION))

	if err := c.Draw(func(cv *raster.Canvas) { cv.Clear(background) }); err != nil {
		return err
	}

	target, mem, err := surfaceTarget(*opts.Surface, *opts.ShmName, size)
	if err != nil {
		return err
	}
	if mem != nil {
		defer mem.Close()
	}

	r, err := glcontext.NewRasterizationContext(c, target, size)
	if err != nil {
		return err
	}
	defer r.Destroy()

	if err := r.Draw(drawPattern); err != nil {
		return err
	}
	if err := r.FlushToSurface(); err != nil {
		return err
	}
	log.Printf("Published to %s (handle %v)", *opts.Surface, r.SurfaceHandle())

	var pix []byte
	if mem != nil {
		pix = append([]byte(nil), mem.Bytes()[:size.Area()*4]...)
	} else {
		if err := r.MakeCurrent(); err != nil {
			return err
		}
		pix = readFramebuffer(r.Parent().Functions(), r.FramebufferID(), size)
	}

	f, err := os.Create(*opts.Output)
	if err != nil {
		return err
	}
	if err := frame.WritePNG(f, pix, size, *opts.Scale); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %s", *opts.Output)

	if *opts.Hold && mem != nil {
		log.Printf("Holding segment %q open; press Enter to exit", mem.Name())
		bufio.NewReader(os.Stdin).ReadString('\n')
	}
	return nil
}

// openContext opens the named platform, or the first available one that
// works when name is empty.
func openContext(name string, size graphics.Size) (*glcontext.Context, func(), error) {
	var platforms []glcontext.Platform
	if name != "" {
		p, err := glcontext.ParsePlatform(name)
		if err != nil {
			return nil, nil, err
		}
		platforms = []glcontext.Platform{p}
	} else {
		platforms = glcontext.Available()
	}
	if len(platforms) == 0 {
		return nil, nil, errors.New("no platform is built into this binary")
	}

	var errs []error
	for _, p := range platforms {
		cfg, release, err := glcontext.OpenDefault(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c, err := glcontext.New(cfg, size)
		if err != nil {
			release()
			errs = append(errs, err)
			continue
		}
		return c, release, nil
	}
	return nil, nil, errors.Join(errs...)
}

func surfaceTarget(kind, shmName string, size graphics.Size) (glcontext.SurfaceTarget, *sharedmemory.SharedMemory, error) {
	switch kind {
	case options.SurfaceEGLImage:
		return glcontext.EGLImage{}, nil, nil
	case options.SurfaceSharedMemory:
		mem, err := sharedmemory.CreateSharedMemory(shmName, size.Area()*4)
		if err != nil {
			return nil, nil, err
		}
		return glcontext.SharedMemory{Mem: mem}, mem, nil
	}
	return nil, nil, fmt.Errorf("unknown surface %q", kind)
}

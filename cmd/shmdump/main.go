// Command shmdump opens a shared memory segment published by a
// rasterization context, the way a compositor would, and writes the frame
// it holds to a PNG file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/richinsley/gosharedgl/frame"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/sharedmemory"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var name = flag.String("shm", "gosharedgl-probe", "Shared memory segment name")
	var width = flag.Int("width", 256, "Frame width")
	var height = flag.Int("height", 256, "Frame height")
	var output = flag.String("output", "shm.png", "PNG file to write")
	var scale = flag.Float64("scale", 1, "Scale factor applied to the PNG")
	flag.Parse()

	if err := dump(*name, graphics.Sz(*width, *height), *output, *scale); err != nil {
		log.Fatalf("shmdump: %v", err)
	}
}

func dump(name string, size graphics.Size, output string, scale float64) error {
	if !size.Valid() {
		return fmt.Errorf("invalid size %dx%d", size.Width, size.Height)
	}
	shm, err := sharedmemory.OpenSharedMemory(name, size.Area()*4)
	if err != nil {
		return err
	}
	defer shm.Close()
	log.Printf("Opened shared memory segment '%s' with size %d bytes.", name, shm.GetSize())

	// Copy out before encoding so the producer can keep publishing.
	pix := make([]byte, shm.GetSize())
	if _, err := shm.ReadAt(pix, 0); err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := frame.WritePNG(f, pix, size, scale); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %s", output)
	return nil
}

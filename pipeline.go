package sprited

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/sprited/jres"
	"github.com/bodgit/sprited/literal"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const numWorkers = 10

var imageExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// Converter turns directories of ordinary images into sprites.
type Converter struct {
	palette color.Palette
	format  literal.Format
	logger  *log.Logger
}

// NewConverter returns a Converter writing literals in format f.
func NewConverter(p color.Palette, f literal.Format, logger *log.Logger) *Converter {
	return &Converter{
		palette: p,
		format:  f,
		logger:  logger,
	}
}

func literalExt(f literal.Format) string {
	if f == literal.Python {
		return ".py"
	}
	return ".ts"
}

// ImportImage decodes the image in file as a sprite record.
func ImportImage(file string, p color.Palette) (*jres.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	b, err := jres.FromImage(m, p)
	if err != nil {
		return nil, err
	}

	return jres.NewImage(b, p)
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			// Ignore any file greater than 16 MB
			if info.Size() > 16<<(10*2) {
				return nil
			}

			if _, ok := imageExtensions[strings.ToLower(filepath.Ext(file))]; !ok {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) convertFile(file string) error {
	item, err := ImportImage(file, c.palette)
	if err != nil {
		c.logger.Printf("Skipping \"%s\": %v\n", file, err)
		return nil
	}

	b, err := item.Bitmap()
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(file, filepath.Ext(file))

	j, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(base+".jres", j, 0644); err != nil {
		return err
	}

	if err := ioutil.WriteFile(base+literalExt(c.format), []byte(literal.Marshal(b, c.format)+"\n"), 0644); err != nil {
		return err
	}

	c.logger.Printf("Converted \"%s\" (%dx%d)\n", file, item.Width, item.Height)

	return nil
}

func (c *Converter) convertWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := c.convertFile(file); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Convert walks path and, for every image found, writes a .jres record and
// a literal next to it.
func (c *Converter) Convert(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := c.convertWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}

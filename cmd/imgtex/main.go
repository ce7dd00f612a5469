// Command imgtex renders an image through a texture provider, the way a
// compositor would, and saves the resulting frame as PNG.
//
//	imgtex -in photo.jpg -width 300 -height 200 -fit cover -out frame.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gogpu/imgtex"
	"github.com/gogpu/imgtex/config"
	intImage "github.com/gogpu/imgtex/internal/image"
	"github.com/gogpu/imgtex/registry"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdin); err != nil {
		log.Fatalf("imgtex: %v", err)
	}
}

type flags struct {
	in         string
	out        string
	width      int
	height     int
	srcWidth   int
	srcHeight  int
	fit        string
	base64     bool
	cache      bool
	configPath string
	logLevel   string
	timeout    time.Duration
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("imgtex", flag.ContinueOnError)
	fs.StringVar(&f.in, "in", "", "input image file, or - for stdin")
	fs.StringVar(&f.out, "out", "frame.png", "output PNG file")
	fs.IntVar(&f.width, "width", 0, "destination width (default: source width)")
	fs.IntVar(&f.height, "height", 0, "destination height (default: source height)")
	fs.IntVar(&f.srcWidth, "src-width", 0, "declared source width (default: decoded width)")
	fs.IntVar(&f.srcHeight, "src-height", 0, "declared source height (default: decoded height)")
	fs.StringVar(&f.fit, "fit", "contain", "fit mode: fill, contain, cover, fitWidth, fitHeight, none, scaleDown")
	fs.BoolVar(&f.base64, "base64", false, "input holds base64 text instead of image bytes")
	fs.BoolVar(&f.cache, "cache", false, "allow reuse of cached frames")
	fs.StringVar(&f.configPath, "config", "", "TOML config file (default: ~/.config/imgtex/config.toml, ./imgtex.toml)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "render timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.in == "" {
		return nil, errors.New("missing -in")
	}
	return f, nil
}

func loadConfig(f *flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// buildRequest resolves the source and fills in sizes left to defaults.
func buildRequest(f *flags, stdin io.Reader) (imgtex.Request, error) {
	fit, err := imgtex.ParseFitMode(f.fit)
	if err != nil {
		return imgtex.Request{}, err
	}
	req := imgtex.Request{
		Width:        f.width,
		Height:       f.height,
		SourceWidth:  f.srcWidth,
		SourceHeight: f.srcHeight,
		Fit:          fit,
		UseCache:     f.cache,
	}

	var data []byte
	switch {
	case f.in == "-":
		data, err = io.ReadAll(stdin)
	case f.base64:
		data, err = intImage.ReadFile(f.in)
	default:
		req.Path = f.in
		data, err = intImage.ReadFile(f.in)
	}
	if err != nil {
		return imgtex.Request{}, fmt.Errorf("%w: %w", imgtex.ErrSourceNotFound, err)
	}
	if f.base64 {
		if data, err = imgtex.DecodeBitmapString(string(data)); err != nil {
			return imgtex.Request{}, err
		}
	}
	if req.Path == "" {
		req.Bitmap = data
	}

	if req.SourceWidth <= 0 || req.SourceHeight <= 0 || req.Width <= 0 || req.Height <= 0 {
		cfg, _, err := intImage.DecodeConfig(data)
		if err != nil {
			return imgtex.Request{}, fmt.Errorf("%w: %w", imgtex.ErrDecodeFailure, err)
		}
		if req.SourceWidth <= 0 || req.SourceHeight <= 0 {
			req.SourceWidth, req.SourceHeight = cfg.Width, cfg.Height
		}
		if req.Width <= 0 || req.Height <= 0 {
			req.Width, req.Height = req.SourceWidth, req.SourceHeight
		}
	}
	return req, req.Validate()
}

func run(args []string, stdin io.Reader) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	imgtex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	req, err := buildRequest(f, stdin)
	if err != nil {
		return err
	}

	opts := cfg.Options()
	if pool := cfg.WorkerPool(); pool != nil {
		defer pool.Close()
		opts = append(opts, imgtex.WithWorkerPool(pool))
	}

	reg := registry.New()
	defer reg.Close()

	ready := make(chan imgtex.TextureID, 1)
	reg.Subscribe(func(id imgtex.TextureID) {
		select {
		case ready <- id:
		default:
		}
	})

	r, err := registry.NewRenderer(reg, req.Width, req.Height, opts...)
	if err != nil {
		return err
	}
	defer r.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	start := time.Now()
	if err := <-r.Configure(ctx, req); err != nil {
		return err
	}

	var id imgtex.TextureID
	select {
	case id = <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	frame, err := reg.Pull(id)
	if err != nil {
		return err
	}
	defer frame.Release()

	if err := writePNG(f.out, frame); err != nil {
		return err
	}

	log.Printf("%s: %dx%d %s frame (%s), content %v, rendered in %v",
		filepath.Base(f.out), frame.Width, frame.Height, frame.Format,
		humanize.IBytes(uint64(frame.ByteSize())), frame.Content,
		time.Since(start).Round(time.Millisecond))
	return nil
}

func writePNG(path string, frame *imgtex.Frame) error {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := png.Encode(out, frame.Image()); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}

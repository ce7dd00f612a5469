package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/imgtex"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.png", encodePNG(t, 40, 20))
	cfg := writeFile(t, dir, "imgtex.toml", []byte("pixel_format = \"rgba8\"\nlog_level = \"error\"\n"))
	out := filepath.Join(dir, "out.png")

	err := run([]string{
		"-in", in, "-out", out, "-config", cfg,
		"-width", "30", "-height", "30", "-fit", "contain",
	}, nil)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 30, 30) {
		t.Errorf("output bounds = %v, want 30x30", img.Bounds())
	}
	if _, _, _, a := img.At(15, 2).RGBA(); a != 0 {
		t.Errorf("padding alpha = %d, want 0", a)
	}
	if c := color.NRGBAModel.Convert(img.At(15, 15)).(color.NRGBA); c.R < 250 || c.A != 255 {
		t.Errorf("content pixel = %v, want opaque red", c)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "imgtex.toml", []byte("log_level = \"error\"\n"))

	if err := run([]string{"-config", cfg}, nil); err == nil {
		t.Error("run() without -in returned nil")
	}

	err := run([]string{"-in", filepath.Join(dir, "missing.png"), "-config", cfg}, nil)
	if !errors.Is(err, imgtex.ErrSourceNotFound) {
		t.Errorf("run(missing) error = %v, want ErrSourceNotFound", err)
	}

	in := writeFile(t, dir, "in.png", encodePNG(t, 4, 4))
	err = run([]string{"-in", in, "-config", cfg, "-fit", "stretch"}, nil)
	if !errors.Is(err, imgtex.ErrInvalidParameters) {
		t.Errorf("run(bad fit) error = %v, want ErrInvalidParameters", err)
	}
}

func TestBuildRequest(t *testing.T) {
	dir := t.TempDir()
	data := encodePNG(t, 12, 8)
	in := writeFile(t, dir, "in.png", data)
	b64 := writeFile(t, dir, "in.txt", []byte(base64.StdEncoding.EncodeToString(data)))

	tests := []struct {
		name     string
		flags    flags
		stdin    []byte
		wantPath bool
		wantW    int
		wantH    int
		wantSrcW int
		wantSrcH int
	}{
		{
			name:     "path defaults to source size",
			flags:    flags{in: in, fit: "contain"},
			wantPath: true,
			wantW:    12,
			wantH:    8,
			wantSrcW: 12,
			wantSrcH: 8,
		},
		{
			name:     "explicit sizes",
			flags:    flags{in: in, fit: "cover", width: 5, height: 6, srcWidth: 24, srcHeight: 16},
			wantPath: true,
			wantW:    5,
			wantH:    6,
			wantSrcW: 24,
			wantSrcH: 16,
		},
		{
			name:     "stdin bitmap",
			flags:    flags{in: "-", fit: "fill", width: 3, height: 3},
			stdin:    data,
			wantW:    3,
			wantH:    3,
			wantSrcW: 12,
			wantSrcH: 8,
		},
		{
			name:     "base64 file",
			flags:    flags{in: b64, fit: "none", base64: true},
			wantW:    12,
			wantH:    8,
			wantSrcW: 12,
			wantSrcH: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildRequest(&tt.flags, bytes.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("buildRequest() error = %v", err)
			}
			if (req.Path != "") != tt.wantPath {
				t.Errorf("Path = %q, want path source %v", req.Path, tt.wantPath)
			}
			if !tt.wantPath && !bytes.Equal(req.Bitmap, data) {
				t.Error("Bitmap does not hold the image bytes")
			}
			if req.Width != tt.wantW || req.Height != tt.wantH {
				t.Errorf("box = %dx%d, want %dx%d", req.Width, req.Height, tt.wantW, tt.wantH)
			}
			if req.SourceWidth != tt.wantSrcW || req.SourceHeight != tt.wantSrcH {
				t.Errorf("source = %dx%d, want %dx%d", req.SourceWidth, req.SourceHeight, tt.wantSrcW, tt.wantSrcH)
			}
		})
	}
}

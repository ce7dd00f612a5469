package imgtex

import (
	"bytes"
	"encoding/base64"
	"errors"
	"math"
	"testing"
)

func validRequest() Request {
	return Request{
		Path:         "photo.png",
		Width:        100,
		Height:       200,
		SourceWidth:  50,
		SourceHeight: 50,
		Fit:          FitContain,
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
		valid  bool
	}{
		{"valid path", func(r *Request) {}, true},
		{"valid bitmap", func(r *Request) { r.Path = ""; r.Bitmap = []byte{1} }, true},
		{"both sources", func(r *Request) { r.Bitmap = []byte{1} }, false},
		{"no source", func(r *Request) { r.Path = "" }, false},
		{"zero width", func(r *Request) { r.Width = 0 }, false},
		{"negative height", func(r *Request) { r.Height = -1 }, false},
		{"zero source width", func(r *Request) { r.SourceWidth = 0 }, false},
		{"negative source height", func(r *Request) { r.SourceHeight = -5 }, false},
		{"max destination", func(r *Request) { r.Width = MaxDimension; r.Height = MaxDimension }, true},
		{"destination too wide", func(r *Request) { r.Width = MaxDimension + 1 }, false},
		{"destination overflows", func(r *Request) { r.Width = math.MaxInt32; r.Height = math.MaxInt32 }, false},
		{"source too tall", func(r *Request) { r.SourceHeight = MaxDimension + 1 }, false},
		{"unknown fit", func(r *Request) { r.Fit = FitMode(99) }, false},
		{"negative fit", func(r *Request) { r.Fit = FitMode(-1) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(&req)
			err := req.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("Validate() = %v, want ErrInvalidParameters", err)
			}
		})
	}
}

func TestRequest_CloneIsIndependent(t *testing.T) {
	req := validRequest()
	req.Path = ""
	req.Bitmap = []byte{1, 2, 3}

	c := req.clone()
	req.Bitmap[0] = 9
	if c.Bitmap[0] != 1 {
		t.Error("clone shares bitmap memory with the original")
	}
}

func TestDecodeBitmapString(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0xfb, 0xff}

	tests := []struct {
		name string
		in   string
	}{
		{"std", base64.StdEncoding.EncodeToString(payload)},
		{"raw std", base64.RawStdEncoding.EncodeToString(payload)},
		{"url", base64.URLEncoding.EncodeToString(payload)},
		{"raw url", base64.RawURLEncoding.EncodeToString(payload)},
		{"data url", "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)},
		{"surrounding space", "  " + base64.StdEncoding.EncodeToString(payload) + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBitmapString(tt.in)
			if err != nil {
				t.Fatalf("DecodeBitmapString() error = %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("DecodeBitmapString() = %v, want %v", got, payload)
			}
		})
	}
}

func TestDecodeBitmapString_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "not base64!", "data:image/png,raw"} {
		if _, err := DecodeBitmapString(in); !errors.Is(err, ErrSourceNotFound) {
			t.Errorf("DecodeBitmapString(%q) error = %v, want ErrSourceNotFound", in, err)
		}
	}
}

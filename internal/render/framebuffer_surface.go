package render

import (
	"sync"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
)

// FramebufferSurface is a software VideoSurface that blits into an
// in-memory RGBA buffer — enough to exercise upload/present/subtitle
// compositing and to unit test without a real window. A GLFW/SDL-backed
// surface implements the same interface for an actual display.
type FramebufferSurface struct {
	mu sync.Mutex

	width, height int
	pixels        []byte // RGBA, width*height*4

	lastSubs []media.SubtitleRect
	presents int
}

func NewFramebufferSurface(width, height int) *FramebufferSurface {
	return &FramebufferSurface{width: width, height: height, pixels: make([]byte, width*height*4)}
}

func (f *FramebufferSurface) Upload(frame *media.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if frame.Width != f.width || frame.Height != f.height {
		if err := f.resizeLocked(frame.Width, frame.Height); err != nil {
			return err
		}
	}
	switch frame.PixelFormat {
	case media.PixelRGBA:
		n := copy(f.pixels, frame.Pixels)
		if n < len(f.pixels) {
			for i := n; i < len(f.pixels); i++ {
				f.pixels[i] = 0
			}
		}
	case media.PixelYUV420P:
		yuv420pToRGBA(frame, f.pixels)
	default:
		return errors.New(errors.KindFormat, "framebuffer.upload", errUnsupportedPixelFormat)
	}
	return nil
}

func (f *FramebufferSurface) Present(subs []media.SubtitleRect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSubs = subs
	f.presents++
	return nil
}

func (f *FramebufferSurface) Resize(width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resizeLocked(width, height)
}

func (f *FramebufferSurface) resizeLocked(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.KindFormat, "framebuffer.resize", errInvalidDimensions)
	}
	f.width, f.height = width, height
	f.pixels = make([]byte, width*height*4)
	return nil
}

// Snapshot returns a copy of the current framebuffer contents, for tests.
func (f *FramebufferSurface) Snapshot() (pixels []byte, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.pixels))
	copy(out, f.pixels)
	return out, f.width, f.height
}

func (f *FramebufferSurface) Presents() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presents
}

var (
	errUnsupportedPixelFormat = plainErr("framebuffer: unsupported pixel format")
	errInvalidDimensions      = plainErr("framebuffer: invalid dimensions")
)

type plainErr string

func (e plainErr) Error() string { return string(e) }

func yuv420pToRGBA(frame *media.Frame, dst []byte) {
	w, h := frame.Width, frame.Height
	ySize := w * h
	cStride := (w + 1) / 2
	cSize := cStride * (h + 1) / 2
	if len(frame.Pixels) < ySize+2*cSize {
		return
	}
	y := frame.Pixels[:ySize]
	u := frame.Pixels[ySize : ySize+cSize]
	v := frame.Pixels[ySize+cSize : ySize+2*cSize]

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			Y := int(y[row*w+col])
			U := int(u[(row/2)*cStride+col/2]) - 128
			V := int(v[(row/2)*cStride+col/2]) - 128

			r := clamp8(Y + (91881*V)/65536)
			g := clamp8(Y - (22554*U+46802*V)/65536)
			b := clamp8(Y + (116130*U)/65536)

			off := (row*w + col) * 4
			dst[off] = r
			dst[off+1] = g
			dst[off+2] = b
			dst[off+3] = 0xff
		}
	}
}

func clamp8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

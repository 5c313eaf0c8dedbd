// Package sdl is the windowed preview made with SDL2.
// All SDL calls go through the main thread.
package sdl

import (
	"fmt"
	"unsafe"

	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/preview"
	"github.com/liteview/liteview/pkg/thread"
	"github.com/veandco/go-sdl2/sdl"
)

// Options of the preview window.
type Options struct {
	// Framed keeps the window decorations, otherwise the window is borderless.
	Framed bool
}

type SDL struct {
	flags uint32
	log   *logger.Logger
}

func New(opts Options, log *logger.Logger) (*SDL, error) {
	if err := thread.MainErr(func() error { return sdl.Init(sdl.INIT_VIDEO) }); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}
	return &SDL{flags: windowFlags(opts), log: log.Module("sdl")}, nil
}

// windowFlags makes an always-on-top overlay window.
func windowFlags(opts Options) uint32 {
	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALWAYS_ON_TOP)
	if !opts.Framed {
		flags |= sdl.WINDOW_BORDERLESS
	}
	return flags
}

func (s *SDL) Deinit() { thread.Main(sdl.Quit) }

func (s *SDL) Open(title string, w, h uint32) (preview.Surface, error) {
	win := &window{log: s.log}
	if err := thread.MainErr(func() error { return win.init(title, w, h, s.flags) }); err != nil {
		return nil, err
	}
	return win, nil
}

type window struct {
	w   *sdl.Window
	r   *sdl.Renderer
	t   *sdl.Texture
	id  uint32
	log *logger.Logger
}

func (w *window) init(title string, width, height, flags uint32) error {
	win, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), flags)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	r, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		err1 := win.Destroy()
		return fmt.Errorf("renderer: %w, destroy err: %w", err, err1)
	}
	w.w, w.r = win, r
	if w.id, err = win.GetID(); err != nil {
		return fmt.Errorf("window id: %w", err)
	}
	return w.texture(width, height)
}

// texture makes a streaming texture in the 0x00RRGGBB layout of frames.
func (w *window) texture(width, height uint32) error {
	if w.t != nil {
		_ = w.t.Destroy()
		w.t = nil
	}
	t, err := w.r.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		return fmt.Errorf("texture: %w", err)
	}
	w.t = t
	return nil
}

func (w *window) Resize(width, height uint32) error {
	return thread.MainErr(func() error {
		w.w.SetSize(int32(width), int32(height))
		return w.texture(width, height)
	})
}

func (w *window) Present(f image.Frame) error {
	if len(f.Pix) == 0 {
		return nil
	}
	return thread.MainErr(func() error {
		pix, pitch, err := w.t.Lock(nil)
		if err != nil {
			return fmt.Errorf("texture lock: %w", err)
		}
		row := int(f.W) * 4
		src := unsafe.Slice((*byte)(unsafe.Pointer(&f.Pix[0])), len(f.Pix)*4)
		for y := 0; y < int(f.H); y++ {
			copy(pix[y*pitch:y*pitch+row], src[y*row:(y+1)*row])
		}
		w.t.Unlock()

		ow, oh, err := w.r.GetOutputSize()
		if err != nil {
			return err
		}
		x, y, fw, fh := preview.Fit(f.W, f.H, ow, oh)
		_ = w.r.SetDrawColor(0, 0, 0, 0xff)
		_ = w.r.Clear()
		if err = w.r.Copy(w.t, nil, &sdl.Rect{X: x, Y: y, W: fw, H: fh}); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		w.r.Present()
		return nil
	})
}

func (w *window) SetTitle(title string) { thread.Main(func() { w.w.SetTitle(title) }) }

// Poll drains the SDL event queue.
func (w *window) Poll() (closed bool) {
	thread.Main(func() {
		for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
			switch ev := e.(type) {
			case *sdl.QuitEvent:
				closed = true
			case *sdl.WindowEvent:
				if ev.Event == sdl.WINDOWEVENT_CLOSE && ev.WindowID == w.id {
					closed = true
				}
			}
		}
	})
	if closed {
		w.log.Debug().Msg("window closed by user")
	}
	return
}

func (w *window) Close() error {
	return thread.MainErr(func() error {
		if w.t != nil {
			_ = w.t.Destroy()
		}
		if w.r != nil {
			_ = w.r.Destroy()
		}
		return w.w.Destroy()
	})
}

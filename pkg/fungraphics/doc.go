// Package fungraphics provides a double-buffered 2D drawing surface for
// teaching and small games.
//
// Client code draws shapes, text and images into an off-screen buffer while
// a background goroutine composites that buffer onto a window, a terminal or
// memory at the display refresh rate. The caller's own logic loop paces
// itself with SyncGameLogic.
//
// # Basic Usage
//
//	fg, err := fungraphics.New(fungraphics.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fg.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	if err := fg.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	go func() {
//	    for x := 0; ; x = (x + 2) % fg.FrameWidth() {
//	        fg.WithFrontLock(func(g fungraphics.Graphics) {
//	            g.Clear()
//	            g.SetColor(color.RGBA{R: 255, A: 255})
//	            g.DrawFilledCircle(x, 100, 40)
//	        })
//	        fg.SyncGameLogic(60)
//	    }
//	}()
//
//	// The window event loop must run on the main goroutine.
//	if err := fg.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Layers
//
// A surface has two layers. The foreground is where drawing goes by default
// and supports transparency. The background is an opaque backdrop:
//
//	fg.DrawBackground()
//	fg.DrawPicture(320, 240, landscape) // drawn once
//	fg.DrawForeground()
//	fg.Clear() // now clears to transparent, revealing the landscape
//
// # Concurrency
//
// Every drawing method takes the frame-composition lock, which the
// presenter also holds while it composites a frame, so a frame never shows a
// half-drawn shape. A sequence of calls is only presented together when it
// runs inside WithFrontLock.
//
// # Pixel arrays
//
// For image processing, NewImageGraphics opens a surface sized to an image
// file, and Pixels/SetPixels exchange the whole active layer as an [x][y]
// array under a single lock:
//
//	fg, _ := fungraphics.NewImageGraphics("lena.png", fungraphics.DefaultOptions())
//	gray := fungraphics.ToGray(fg.Pixels())
//	fg.SetPixels(gray)
//
// # Headless
//
// With Options.Headless the surface presents into memory, which suits tests
// and batch rendering:
//
//	opts := fungraphics.DefaultOptions()
//	opts.Headless = true
//	fg, _ := fungraphics.New(opts)
//	fg.DrawFilledCircle(10, 10, 50)
//	fg.SaveAsPNG("circle")
package fungraphics

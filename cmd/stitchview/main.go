// Command stitchview serves a compiled sprite sheet over HTTP so it can
// be inspected in a browser:
//
//	stitchview -sheet hero-sword.sps -listen :8080
//
// Routes:
//
//	/                 index page with frame thumbnails
//	/sheet.png        the packed canvas
//	/frame/{idx}.png  a single frame, optional ?zoom=N
//	/anim.gif         animated preview
package main

import (
	"bytes"
	"flag"
	"fmt"
	"hash/fnv"
	"html/template"
	"image/png"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/vincent-petithory/dataurl"

	"github.com/spriteforge/stitch"
	"github.com/spriteforge/stitch/preview"
	"github.com/spriteforge/stitch/spritefile"
)

// generation is baked into the ETag; bump if the way pages or images
// are generated changes.
const generation = 1

const thumbZoom = 4

func main() {
	var (
		sheetPath = flag.String("sheet", "out.sps", "compiled sprite sheet to serve")
		listen    = flag.String("listen", ":8080", "http listen address")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	stitch.SetLogger(logger)

	s, err := newServer(*sheetPath)
	if err != nil {
		log.Fatalf("stitchview: %v", err)
	}

	slog.Info("serving sprite sheet",
		"path", *sheetPath, "frames", len(s.sheet.Frames), "listen", *listen)
	log.Fatal(http.ListenAndServe(*listen, handlers.CombinedLoggingHandler(os.Stdout, s.router())))
}

type server struct {
	path  string
	sheet *spritefile.Sheet
	etag  string
	index []byte // rendered index page
}

func newServer(path string) (*server, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-provided
	if err != nil {
		return nil, err
	}
	sheet, err := spritefile.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	sum := fnv.New32a()
	_, _ = sum.Write(data)
	s := &server{
		path:  path,
		sheet: sheet,
		etag:  fmt.Sprintf(`W/"sheet:%d:%08x:%d"`, generation, sum.Sum32(), len(sheet.Frames)),
	}
	if err := s.renderIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.indexHandler)
	r.HandleFunc("/sheet.png", s.sheetHandler)
	r.HandleFunc("/frame/{idx:[0-9]+}.png", s.frameHandler)
	r.HandleFunc("/anim.gif", s.animHandler)
	return r
}

// serveCached answers with 304 when the client already has the current
// sheet. The whole site is derived from one immutable file, so a single
// ETag covers every route.
func (s *server) serveCached(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("If-None-Match") != s.etag {
		return false
	}
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", s.etag)
	w.WriteHeader(http.StatusNotModified)
	return true
}

func (s *server) setHeaders(w http.ResponseWriter, mime string) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", s.etag)
}

func (s *server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if s.serveCached(w, r) {
		return
	}
	s.setHeaders(w, "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.index)
}

func (s *server) sheetHandler(w http.ResponseWriter, r *http.Request) {
	if s.serveCached(w, r) {
		return
	}
	if s.sheet.Canvas == nil {
		http.Error(w, "sheet has no canvas", http.StatusNotFound)
		return
	}
	s.setHeaders(w, "image/png")
	w.WriteHeader(http.StatusOK)
	_ = png.Encode(w, s.sheet.Canvas.ToImage())
}

func (s *server) frameHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idx, err := strconv.Atoi(vars["idx"])
	if err != nil {
		http.Error(w, "idx not a number", http.StatusBadRequest)
		return
	}
	if idx < 0 || idx >= len(s.sheet.Frames) {
		http.Error(w, "no such frame", http.StatusNotFound)
		return
	}

	zoom := 1
	if z := r.URL.Query().Get("zoom"); z != "" {
		zoom, err = strconv.Atoi(z)
		if err != nil || zoom < 1 || zoom > 16 {
			http.Error(w, "zoom must be 1..16", http.StatusBadRequest)
			return
		}
	}

	if s.serveCached(w, r) {
		return
	}

	buf, err := preview.Zoom(s.frameBuffer(idx), zoom)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.setHeaders(w, "image/png")
	w.WriteHeader(http.StatusOK)
	_ = png.Encode(w, buf.ToImage())
}

func (s *server) animHandler(w http.ResponseWriter, r *http.Request) {
	if s.serveCached(w, r) {
		return
	}
	var out bytes.Buffer
	if err := preview.EncodeGIF(&out, s.sheet); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.setHeaders(w, "image/gif")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Bytes())
}

// frameBuffer copies one frame out of the canvas.
func (s *server) frameBuffer(i int) *stitch.Buffer {
	rect := s.sheet.Frames[i].Rect
	return stitch.FromImage(s.sheet.Canvas.ToImage().SubImage(rect))
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Path}}</title>
<style>
body { font-family: monospace; background: #222; color: #ddd; }
a { color: #8cf; }
img { image-rendering: pixelated; border: 1px solid #555; background: #333; }
figure { display: inline-block; margin: 8px; text-align: center; }
figcaption { font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Path}}</h1>
<p>{{.FrameCount}} frames, canvas {{.CanvasW}}x{{.CanvasH}}
| <a href="/sheet.png">sheet.png</a>
| <a href="/anim.gif">anim.gif</a></p>
{{range .Frames}}<figure>
<a href="/frame/{{.Index}}.png?zoom=8"><img src="{{.Src}}" alt="frame {{.Index}}"></a>
<figcaption>#{{.Index}} {{.W}}x{{.H}} {{.Duration}}</figcaption>
</figure>
{{end}}</body>
</html>
`))

type indexData struct {
	Path       string
	FrameCount int
	CanvasW    int
	CanvasH    int
	Frames     []frameView
}

type frameView struct {
	Index    int
	W, H     int
	Duration time.Duration
	// Src is a data: URL; typed so the template does not sanitize it.
	Src template.URL
}

// renderIndex builds the index page once at startup; the sheet never
// changes while serving.
func (s *server) renderIndex() error {
	data := indexData{
		Path:       s.path,
		FrameCount: len(s.sheet.Frames),
	}
	if s.sheet.Canvas != nil {
		data.CanvasW = s.sheet.Canvas.Width()
		data.CanvasH = s.sheet.Canvas.Height()
	}

	for i, f := range s.sheet.Frames {
		thumb, err := preview.Zoom(s.frameBuffer(i), thumbZoom)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, thumb.ToImage()); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		src, err := dataurl.New(buf.Bytes(), "image/png").MarshalText()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		data.Frames = append(data.Frames, frameView{
			Index:    i,
			W:        f.Rect.Dx(),
			H:        f.Rect.Dy(),
			Duration: f.Duration,
			Src:      template.URL(src), //nolint:gosec // PNG bytes we just encoded
		})
	}

	var out bytes.Buffer
	if err := indexTemplate.Execute(&out, data); err != nil {
		return err
	}
	s.index = out.Bytes()
	return nil
}

package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/Brownie44l1/image-classify/internal/predictor"
)

type resultLine struct {
	Label string
	Score string
}

type pageView struct {
	Title        string
	About        string
	ModelID      string
	UploadAccept string

	Info     string
	Error    string
	ImageURL template.URL
	Results  []resultLine
	Chart    template.HTML
}

func (h *Handler) newPageView() *pageView {
	return &pageView{
		Title:        h.opts.Title,
		About:        h.opts.About,
		ModelID:      h.opts.ModelID,
		UploadAccept: uploadAccept(h.opts.UploadTypes),
	}
}

// setImage stores a data: URL produced by imaging.DataURL. html/template
// would otherwise replace the data scheme with a placeholder.
func (v *pageView) setImage(dataURL string) {
	v.ImageURL = template.URL(dataURL)
}

func formatResults(results []predictor.Result) []resultLine {
	lines := make([]resultLine, len(results))
	for i, r := range results {
		lines[i] = resultLine{Label: r.Label, Score: fmt.Sprintf("%.4f", r.Score)}
	}
	return lines
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (h *Handler) render(w http.ResponseWriter, status int, view *pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; display: flex; min-height: 100vh; color: #262730; }
  aside { width: 260px; background: #f0f2f6; padding: 1.5rem; box-sizing: border-box; }
  main { flex: 1; padding: 2rem 3rem; max-width: 820px; }
  .box { border-radius: 6px; padding: .75rem 1rem; margin: 1rem 0; }
  .info { background: #e8f0fe; color: #0b3d91; }
  .error { background: #fde8e8; color: #9b1c1c; }
  form fieldset { border: 1px dashed #bbb; border-radius: 6px; margin-bottom: 1rem; }
  figure { margin: 1rem 0; }
  figure img { max-width: 100%; }
  figcaption { color: #808495; font-size: .9rem; }
  .line { font-family: ui-monospace, monospace; margin: .2rem 0; }
</style>
</head>
<body>
<aside>
  <h2>{{.Title}}</h2>
  <h3>About us</h3>
  <div class="box info">{{.About}}</div>
  {{with .ModelID}}<p>Model: <code>{{.}}</code></p>{{end}}
</aside>
<main>
  <h1>{{.Title}}</h1>
  <h2>Upload an image or use your camera to classify it</h2>
  <form method="post" action="/" enctype="multipart/form-data">
    <fieldset>
      <legend>Upload an image</legend>
      <input type="file" name="upload" accept="{{.UploadAccept}}">
    </fieldset>
    <fieldset>
      <legend>Take a picture</legend>
      <input type="file" name="camera" accept="image/*" capture="environment">
    </fieldset>
    <button type="submit">Classify</button>
  </form>
  {{with .Error}}<div class="box error">{{.}}</div>{{end}}
  {{with .Info}}<div class="box info">{{.}}</div>{{end}}
  {{with .ImageURL}}<figure><img src="{{.}}" alt="Input image"><figcaption>Input image</figcaption></figure>{{end}}
  {{if .Results}}
  <p><strong>Top predictions</strong></p>
  {{range .Results}}<p class="line">{{.Label}}: {{.Score}}</p>
  {{end}}
  {{.Chart}}
  {{end}}
</main>
</body>
</html>
`))

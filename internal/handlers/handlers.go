package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Brownie44l1/image-classify/internal/imaging"
	"github.com/Brownie44l1/image-classify/internal/predictor"
)

const infoPrompt = "Please upload an image or take a picture with your camera."

type Predictor interface {
	Predict(ctx context.Context, img image.Image) ([]predictor.Result, error)
}

type Options struct {
	Title          string
	About          string
	ModelID        string
	MaxUploadBytes int64
	MaxPixels      int
	UploadTypes    []string
}

type Handler struct {
	predictor Predictor
	opts      Options
}

func NewHandler(p Predictor, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = imaging.DefaultMaxPixels
	}
	if len(opts.UploadTypes) == 0 {
		opts.UploadTypes = []string{"png", "jpg", "jpeg"}
	}
	return &Handler{
		predictor: p,
		opts:      opts,
	}
}

// source is one optional image input. Earlier sources win.
type source struct {
	field     string
	name      string
	checkType bool
}

var (
	pageSources = []source{
		{field: "upload", name: "uploaded", checkType: true},
		{field: "camera", name: "camera"},
	}
	apiSources = []source{
		{field: "image", name: "uploaded", checkType: true},
		{field: "upload", name: "uploaded", checkType: true},
		{field: "camera", name: "camera"},
	}
)

type input struct {
	source source
	file   multipart.File
	header *multipart.FileHeader
}

// pickInput returns the first source present in the form, or nil.
// Browsers send an unnamed empty part for an untouched file input, which
// counts as absent.
func pickInput(r *http.Request, sources []source) *input {
	if r.MultipartForm == nil {
		return nil
	}
	for _, s := range sources {
		file, header, err := r.FormFile(s.field)
		if err != nil {
			continue
		}
		if header.Filename == "" && header.Size == 0 {
			file.Close()
			continue
		}
		return &input{source: s, file: file, header: header}
	}
	return nil
}

// decode turns the chosen input into an RGB image.
func (h *Handler) decode(in *input) (*image.RGBA, error) {
	defer in.file.Close()

	if in.source.checkType {
		if err := imaging.CheckUploadType(in.header.Filename, h.opts.UploadTypes); err != nil {
			return nil, err
		}
	}

	img, format, err := imaging.Decode(in.file, h.opts.MaxPixels)
	if err != nil {
		return nil, err
	}

	log.Printf("Received %s image %q (%d bytes, %s, %dx%d)", in.source.name, in.header.Filename,
		in.header.Size, format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

func decodeMessage(in *input, err error) string {
	return fmt.Sprintf("Could not open %s image: %v", in.source.name, err)
}

// parseForm reads a multipart body capped at MaxUploadBytes. A request that
// is not multipart is treated as carrying no files. On failure it returns
// the status and a user-facing message.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	err := r.ParseMultipartForm(h.opts.MaxUploadBytes)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return http.StatusOK, ""
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "Image is too large (max " + sizeString(h.opts.MaxUploadBytes) + ")"
	}
	log.Printf("Form parse error: %v", err)
	return http.StatusBadRequest, "Failed to parse form"
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Index renders the empty page with the input prompt.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	view := h.newPageView()
	view.Info = infoPrompt
	h.render(w, http.StatusOK, view)
}

// Classify handles the page form: pick the input, decode it, predict and
// render text lines plus a bar chart.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	view := h.newPageView()
	if status, msg := h.parseForm(w, r); msg != "" {
		view.Error = msg
		h.render(w, status, view)
		return
	}

	in := pickInput(r, pageSources)
	if in == nil {
		view.Info = infoPrompt
		h.render(w, http.StatusOK, view)
		return
	}

	img, err := h.decode(in)
	if err != nil {
		view.Error = decodeMessage(in, err)
		h.render(w, http.StatusOK, view)
		return
	}

	if url, err := imaging.DataURL(img); err != nil {
		log.Printf("Preview encoding failed: %v", err)
	} else {
		view.setImage(url)
	}

	results, err := h.predictor.Predict(r.Context(), img)
	if err != nil {
		log.Printf("Prediction error: %v", err)
		http.Error(w, "Prediction failed", http.StatusInternalServerError)
		return
	}

	view.Results = formatResults(results)
	chart, err := renderChart(results)
	if err != nil {
		log.Printf("Chart skipped: %v", err)
	} else {
		view.Chart = chart
	}
	h.render(w, http.StatusOK, view)
}

type apiResponse struct {
	Model       string             `json:"model,omitempty"`
	Source      string             `json:"source"`
	Class       string             `json:"class"`
	Confidence  float64            `json:"confidence"`
	Predictions []predictor.Result `json:"predictions"`
}

// PredictFromImage is the JSON flavour of Classify.
func (h *Handler) PredictFromImage(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	if status, msg := h.parseForm(w, r); msg != "" {
		writeError(w, status, msg)
		return
	}

	in := pickInput(r, apiSources)
	if in == nil {
		writeError(w, http.StatusBadRequest, "No image file provided. Use 'image', 'upload' or 'camera' as the form field name")
		return
	}

	img, err := h.decode(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, decodeMessage(in, err))
		return
	}

	results, err := h.predictor.Predict(r.Context(), img)
	if err != nil {
		log.Printf("Prediction error: %v", err)
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	resp := apiResponse{
		Model:       h.opts.ModelID,
		Source:      in.source.name,
		Predictions: results,
	}
	if len(results) > 0 {
		resp.Class = results[0].Label
		resp.Confidence = results[0].Score
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func sizeString(n int64) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d KB", n>>10)
}

func uploadAccept(types []string) string {
	exts := make([]string, len(types))
	for i, t := range types {
		exts[i] = "." + t
	}
	return strings.Join(exts, ",")
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger, enableCORS)

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/", h.Classify).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/predict/image", h.PredictFromImage).Methods(http.MethodPost, http.MethodOptions)

	return r
}

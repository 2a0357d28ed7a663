package blocks

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1/blocks").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("", handler.ListBlocks).Methods(http.MethodGet)
	api.HandleFunc("", handler.CreateBlock).Methods(http.MethodPost)
	api.HandleFunc("/{blockedUserId}", handler.DeleteBlock).Methods(http.MethodDelete)
}

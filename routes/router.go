package routes

import (
	"net/http"

	"vidfetch/delivery"

	"github.com/rs/cors"
)

// DownloadPath is the only media endpoint
const DownloadPath = "/api/video/download"

// NewRouter registers every route and wraps them in a permissive CORS policy
func NewRouter(svc *delivery.Service) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(DownloadPath, DownloadHandler(svc))
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/version", VersionHandler)
	mux.HandleFunc("/failures", FailureQueryHandler)
	mux.HandleFunc("/failures/list", FailureListHandler)
	mux.HandleFunc("/success", SuccessQueryHandler)
	mux.HandleFunc("/success/list", SuccessListHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length", RequestIDHeader},
	})
	return c.Handler(mux)
}

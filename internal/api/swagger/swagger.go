package swagger

import (
	_ "embed"
	"net/http"
)

// openapiSpec OpenAPI описание HTTP API заметок
//
//go:embed openapi.json
var openapiSpec []byte

// Handler отдает swagger.json.
// CORS заголовки выставляются здесь, чтобы документ можно было открыть
// во внешнем Swagger UI.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(openapiSpec)
	})
}

package http

import (
	_ "embed"
	"net/http"
)

//go:embed ui.html
var uiPage []byte

func handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(uiPage)
}

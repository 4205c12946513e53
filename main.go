package main

import (
	"context"
	"log"

	"github.com/freekieb7/wrangler/http"
)

func main() {
	s := http.NewServer("hello")
	s.Router.GET("/", func(req *http.Request) http.Result {
		return http.Text("hello world")
	})

	log.Fatal(s.ListenAndServe(context.Background(), "0.0.0.0:8080"))
}

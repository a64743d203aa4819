package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/razzie/fig/pkg/server"
)

func main() {
	port := os.Getenv("PORT")
	if len(port) == 0 {
		port = "8080"
	}
	addr := flag.String("addr", ":"+port, "HTTP listen address.")
	redisURL := flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL for persistent storage (optional).")
	ttl := flag.Duration("ttl", server.DefaultTTL, "Time an animation is kept after its last access.")
	maxUpload := flag.Int64("max-upload", server.DefaultMaxUpload, "Largest accepted upload in bytes.")
	flag.Parse()

	mgr := server.NewAnimationMgr(*redisURL, *ttl)
	srv := server.NewServer(mgr, *maxUpload)

	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("Listening on", *addr)
	log.Fatal(hs.ListenAndServe())
}

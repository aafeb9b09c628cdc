package main

import (
	_ "embed"
	"log"
	"net/http"
	"time"
)

//go:embed page.json
var pageData []byte

//go:embed genres.json
var genreData []byte

func main() {
	page := func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pageData); err != nil {
			log.Printf("[TMDB] Write error: %v", err)
		}

		log.Printf("[TMDB] %s %s?%s - 200 OK", r.Method, r.URL.Path, r.URL.RawQuery)
	}

	http.HandleFunc("/3/discover/movie", page)
	http.HandleFunc("/3/discover/tv", page)
	http.HandleFunc("/3/trending/movie/day", page)
	http.HandleFunc("/3/trending/tv/day", page)

	genres := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(genreData); err != nil {
			log.Printf("[TMDB] Genre write error: %v", err)
		}

		log.Printf("[TMDB] %s %s - 200 OK", r.Method, r.URL.Path)
	}

	http.HandleFunc("/3/genre/movie/list", genres)
	http.HandleFunc("/3/genre/tv/list", genres)

	log.Println("Mock TMDB API running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

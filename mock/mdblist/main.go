package main

import (
	_ "embed"
	"log"
	"net/http"
	"strings"
	"time"
)

//go:embed items.json
var itemsData []byte

func main() {
	http.HandleFunc("/lists/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/items") {
			http.NotFound(w, r)
			return
		}

		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(itemsData); err != nil {
			log.Printf("[MDBList] Write error: %v", err)
		}

		log.Printf("[MDBList] %s %s?%s - 200 OK", r.Method, r.URL.Path, r.URL.RawQuery)
	})

	log.Println("Mock MDBList API running on :8082")
	server := &http.Server{
		Addr:         ":8082",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// cmd/api/main.go
package main

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
)

func main() {
	catalogServiceURL, _ := url.Parse(getEnv("CATALOG_SERVICE_URL", "http://localhost:8081"))
	trainerServiceURL, _ := url.Parse(getEnv("TRAINER_SERVICE_URL", "http://localhost:8082"))
	collectionServiceURL, _ := url.Parse(getEnv("COLLECTION_SERVICE_URL", "http://localhost:8083"))
	tradingServiceURL, _ := url.Parse(getEnv("TRADING_SERVICE_URL", "http://localhost:8084"))

	catalogProxy := httputil.NewSingleHostReverseProxy(catalogServiceURL)
	trainerProxy := httputil.NewSingleHostReverseProxy(trainerServiceURL)
	collectionProxy := httputil.NewSingleHostReverseProxy(collectionServiceURL)
	tradingProxy := httputil.NewSingleHostReverseProxy(tradingServiceURL)

	// Routes are grouped by resource root, one backend per root. The exact
	// path is registered alongside the subtree so POSTs to the root are
	// proxied instead of redirected.
	mount := func(prefix string, proxy http.Handler) {
		http.Handle("/api/v1"+prefix, http.StripPrefix("/api/v1", proxy))
		http.Handle("/api/v1"+prefix+"/", http.StripPrefix("/api/v1", proxy))
	}

	mount("/sets", catalogProxy)
	mount("/cards", catalogProxy)
	mount("/trainers", trainerProxy)
	mount("/wallet", trainerProxy)
	mount("/friends", trainerProxy)
	mount("/packs", collectionProxy)
	mount("/collection", collectionProxy)
	mount("/trades", tradingProxy)

	port := getEnv("PORT", "8080")
	log.Printf("API Gateway listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

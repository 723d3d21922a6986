// Package main serves the Firestore sync function through the Functions
// Framework, locally and on Cloud Run.
package main

import (
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	// Registers the PubSubToFirestore function.
	_ "github.com/AfricanTobacco/Daily-Coordinator/internal/firesync"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}

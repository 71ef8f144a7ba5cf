// Command latusd runs the Solver gRPC service described by
// internal/rpc, memoizing solutions in a SQLite cache.
package main

import (
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/latus-lang/latus/internal/cache"
	"github.com/latus-lang/latus/internal/config"
	"github.com/latus-lang/latus/internal/rpc"
)

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	addr := config.DefaultDaemonAddr
	cachePath := config.DefaultCachePath
	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "-addr":
			if i+1 < len(os.Args) {
				addr = os.Args[i+1]
				i++
			}
		case "-cache":
			if i+1 < len(os.Args) {
				cachePath = os.Args[i+1]
				i++
			}
		}
	}

	store, err := cache.Open(cachePath)
	if err != nil {
		log.Fatalf("latusd: opening cache %s: %v", cachePath, err)
	}
	defer store.Close()

	instanceID := uuid.NewString()
	log.Printf("latusd[%s]: listening on %s, cache %s", instanceID, addr, cachePath)

	server := rpc.NewServer(store)
	if err := server.Serve(addr); err != nil {
		log.Fatalf("latusd[%s]: %v", instanceID, err)
	}
}

// Command proxy runs the replicated-backend messaging proxy.
//
// Grounded on cmd/server/main.go's server.DefaultServer().Start() shape
// and the commented-out flag.StringVar block it left behind.
package main

import (
	"flag"

	"msgproxy/internal/config"
	"msgproxy/internal/log"
	"msgproxy/internal/proxy"
)

func main() {
	host := flag.String("host", "", "proxy host (overrides proxy.host)")
	port := flag.String("port", "", "proxy port (overrides proxy.port)")
	flag.Parse()

	values := map[string]string{}
	if *host != "" {
		values[config.KeyHost] = *host
	}
	if *port != "" {
		values[config.KeyPort] = *port
	}

	cfg, err := config.Load(values)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	srv := proxy.New(cfg)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("proxy: %v", err)
	}
}

// Command proxyclient is a minimal interactive client for exercising the
// proxy's line protocol by hand, adapted from internal/client/client.go's
// read-send-receive loop (length-prefixed framing replaced with this
// protocol's newline framing).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"msgproxy/internal/codec"
	"msgproxy/internal/log"
)

func main() {
	host := flag.String("host", "127.0.0.1", "proxy host")
	port := flag.String("port", "60000", "proxy port")
	flag.Parse()

	addr := *host + ":" + *port
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Fatalf("dial %s: %v", addr, err)
	}
	defer conn.Close()

	input := bufio.NewReader(os.Stdin)
	reader := bufio.NewReader(conn)

	for {
		fmt.Printf("%s> ", addr)
		line, err := input.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			log.Errorf("write: %v", err)
			return
		}

		reply, err := codec.ReadLine(reader)
		if err != nil && reply == "" {
			log.Errorf("read: %v", err)
			return
		}
		fmt.Println(reply)
	}
}

package codec

import (
	"bufio"
	"strings"
)

// ReadLine reads one newline-terminated line and strips the trailing
// "\r\n"/"\n", mirroring the teacher's cmdStr = strings.Trim(cmdStr, "\r\n")
// normalization in internal/client/client.go.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), err
}

package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/mikey/spam-gateway/internal/logging"
	"go.uber.org/zap"
)

var (
	addr      = flag.String("addr", "localhost:8025", "Gateway address")
	inputFile = flag.String("file", "", "Input email file (use stdin if not specified)")
	timeout   = flag.Duration("timeout", 90*time.Second, "Overall request timeout")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	payload, err := readInput()
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}
	logger.Debug("Payload loaded", zap.Int("payload_bytes", len(payload)))

	verdict, err := submit(payload)
	if err != nil {
		logger.Fatal("Failed to submit payload", zap.String("addr", *addr), zap.Error(err))
	}

	fmt.Println(verdict)
}

// readInput loads the raw email from the input file or stdin
func readInput() ([]byte, error) {
	if *inputFile == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(*inputFile)
}

// submit speaks the gateway wire protocol: write the full payload,
// half-close the write side, read the verdict token until EOF
func submit(payload []byte) (string, error) {
	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		return "", fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(*timeout)); err != nil {
		return "", fmt.Errorf("failed to set deadline: %w", err)
	}

	if _, err := conn.Write(payload); err != nil {
		return "", fmt.Errorf("failed to send payload: %w", err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.CloseWrite(); err != nil {
			return "", fmt.Errorf("failed to half-close: %w", err)
		}
	}

	verdict, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("failed to read verdict: %w", err)
	}
	if len(verdict) == 0 {
		return "", fmt.Errorf("connection closed without a verdict (gateway at capacity?)")
	}

	return string(verdict), nil
}

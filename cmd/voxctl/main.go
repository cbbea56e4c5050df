// Command voxctl is the admin CLI for voxd: it issues status/logs/
// toggle commands over the daemon's Unix control socket, adapted from
// the teacher's cmd/client.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"voxd/internal/adminsocket"
)

var socketPath string

func init() {
	flag.StringVar(&socketPath, "socket", defaultSocketPath(), "path to the voxd admin control socket")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-socket path] [status|logs|toggle]\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func defaultSocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("voxd-%d", os.Getuid()))
	}
	return filepath.Join(dir, "voxd", "control.sock")
}

func isValidAction(action string) bool {
	return action == "status" || action == "logs" || action == "toggle"
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	action := flag.Arg(0)
	if !isValidAction(action) {
		fmt.Fprintf(os.Stderr, "Invalid action. Use 'status', 'logs', or 'toggle'\n")
		os.Exit(1)
	}

	client := adminsocket.NewClient(socketPath)
	resp, err := client.Send(action)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to reach voxd at %s: %v\n", socketPath, err)
		os.Exit(1)
	}

	if resp.Error != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Error)
		os.Exit(1)
	}

	fmt.Println(resp.Message)
	for k, v := range resp.Data {
		fmt.Printf("  %s: %v\n", k, v)
	}
}

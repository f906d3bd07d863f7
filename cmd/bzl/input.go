package main

import (
	"fmt"
	"io"
	"os"
)

// readInput reads filename, or standard input when filename is "-".
func readInput(filename string, stdin io.Reader) ([]byte, error) {
	if filename == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

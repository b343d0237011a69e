// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	plaintextPrefix  = "Plaintext="
	ciphertextPrefix = "Ciphertext="
)

// LoadFile reads a pair file from disk. See Load for the format.
func LoadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load parses the known-pair text format: records of a "Plaintext="
// line followed by a "Ciphertext=" line, each carrying 16 hex digits
// (8 per block half, left half first). Spaces may follow the equals
// sign and hex case does not matter. Blank lines and lines with any
// other prefix are skipped. A Ciphertext line seen while a Plaintext
// line is still pending completes a record; an unmatched trailing
// Plaintext line is dropped.
func Load(r io.Reader) (*Corpus, error) {
	var pairs []Pair
	var pending Pair
	expectPlain := true

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if expectPlain {
			left, right, ok := parseRecordLine(line, plaintextPrefix)
			if ok {
				pending.PL, pending.PR = left, right
				expectPlain = false
			}
		} else {
			left, right, ok := parseRecordLine(line, ciphertextPrefix)
			if ok {
				pending.CL, pending.CR = left, right
				pairs = append(pairs, pending)
				expectPlain = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pairs: %w", err)
	}
	return New(pairs), nil
}

// parseRecordLine extracts the two block halves from a record line, or
// reports false for lines that don't start with prefix or carry no hex.
func parseRecordLine(line, prefix string) (left, right uint32, ok bool) {
	if !strings.HasPrefix(line, prefix) {
		return 0, 0, false
	}
	hex := strings.TrimLeft(line[len(prefix):], " ")

	n := 0
	for n < len(hex) && n < 16 && isHexDigit(hex[n]) {
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	hex = hex[:n]

	// The first 8 digits are the left half, the rest the right. Short
	// fields parse as their left-aligned prefix, matching the original
	// tool's tolerance for truncated records.
	lv, err := strconv.ParseUint(hex[:min(8, len(hex))], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	var rv uint64
	if len(hex) > 8 {
		if rv, err = strconv.ParseUint(hex[8:], 16, 32); err != nil {
			return 0, 0, false
		}
	}
	return uint32(lv), uint32(rv), true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

// fealcrack mounts a known-plaintext linear cryptanalysis attack on
// the FEAL-4 block cipher, recovering all six 32-bit round subkeys
// from a corpus of plaintext/ciphertext pairs:
//
//	fealcrack [-workers N] [-max N] [pairfile]
//
// The pair file defaults to known.txt. A companion subcommand mints
// corpora for a chosen or random key:
//
//	fealcrack gen [-pairs N] [-key hex48] [-seed hex] [-o file]
package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/AeonDave/fealcrack/internal/attack"
	"github.com/AeonDave/fealcrack/internal/corpus"
	"github.com/AeonDave/fealcrack/internal/feal"
)

func main() {
	os.Exit(main1())
}

func main1() int {
	if len(os.Args) > 1 && os.Args[1] == "gen" {
		return genMain(os.Args[2:])
	}
	return attackMain(os.Args[1:])
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:

	fealcrack [-workers N] [-max N] [pairfile]
	fealcrack gen [-pairs N] [-key hex48] [-seed hex] [-o file]

The default mode runs the attack against pairfile (known.txt when
omitted) and prints every recovered six-subkey tuple. gen encrypts
random plaintext blocks under a chosen or random key and writes them
in the pair-file format.
`)
}

func attackMain(args []string) int {
	flags := flag.NewFlagSet("fealcrack", flag.ContinueOnError)
	flags.Usage = usage
	workers := flags.Int("workers", 0, "goroutines sweeping the K0 space (0 = GOMAXPROCS)")
	maxKeys := flags.Int("max", 0, "stop after this many accepted key tuples (0 = 256)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	pairFile := "known.txt"
	switch flags.NArg() {
	case 0:
	case 1:
		pairFile = flags.Arg(0)
	default:
		usage()
		return 2
	}

	fmt.Printf("FEAL-4 Linear Cryptanalysis Attack\n")
	fmt.Printf("===================================\n")
	fmt.Printf("Loading plaintext-ciphertext pairs from %s...\n", pairFile)

	pairs, err := corpus.LoadFile(pairFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fealcrack: %v\n", err)
		return 1
	}
	if pairs.Len() == 0 {
		fmt.Fprintf(os.Stderr, "fealcrack: no pairs loaded from %s; check the file format\n", pairFile)
		return 1
	}

	fmt.Printf("Successfully loaded %d plaintext-ciphertext pairs\n", pairs.Len())
	fmt.Printf("Starting attack...\n\n")

	start := time.Now()
	search := &attack.Search{
		Corpus:  pairs,
		Workers: *workers,
		MaxKeys: *maxKeys,
		Report: func(k feal.Key) {
			fmt.Printf("0x%08x\t0x%08x\t0x%08x\t0x%08x\t0x%08x\t0x%08x\n",
				k[0], k[1], k[2], k[3], k[4], k[5])
		},
	}
	found, capped, err := search.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "fealcrack: %v\n", err)
		return 1
	}
	elapsed := time.Since(start).Milliseconds()

	if capped {
		fmt.Printf("\nAttack completed successfully!\n")
	} else {
		fmt.Printf("\nAttack completed.\n")
	}
	fmt.Printf("Found %d valid keys in %d ms\n", found, elapsed)
	return 0
}

func genMain(args []string) int {
	flags := flag.NewFlagSet("fealcrack gen", flag.ContinueOnError)
	flags.Usage = usage
	numPairs := flags.Int("pairs", 200, "number of pairs to generate")
	keyHex := flags.String("key", "", "six subkeys as 48 hex digits (random when empty)")
	seedHex := flags.String("seed", "", "hex seed for deterministic plaintexts")
	outFile := flags.String("o", "", "output file (stdout when empty)")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 0 || *numPairs <= 0 {
		usage()
		return 2
	}

	key, err := parseOrRandomKey(*keyHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fealcrack: %v\n", err)
		return 1
	}
	var seed []byte
	if *seedHex != "" {
		if seed, err = hex.DecodeString(*seedHex); err != nil {
			fmt.Fprintf(os.Stderr, "fealcrack: bad -seed: %v\n", err)
			return 1
		}
	}

	out := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fealcrack: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if err := corpus.Generate(out, *numPairs, key, seed); err != nil {
		fmt.Fprintf(os.Stderr, "fealcrack: %v\n", err)
		return 1
	}

	// The key goes to stderr so a piped corpus stays clean.
	fmt.Fprintf(os.Stderr, "key: %08x%08x%08x%08x%08x%08x\n",
		key[0], key[1], key[2], key[3], key[4], key[5])
	return 0
}

// parseOrRandomKey decodes six subkeys from 48 hex digits, or draws a
// random key when s is empty.
func parseOrRandomKey(s string) (feal.Key, error) {
	var key feal.Key
	if s == "" {
		var raw [24]byte
		if _, err := rand.Read(raw[:]); err != nil {
			return key, fmt.Errorf("random key: %w", err)
		}
		for i := range key {
			key[i] = binary.BigEndian.Uint32(raw[4*i:])
		}
		return key, nil
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("bad -key: %v", err)
	}
	if len(raw) != 24 {
		return key, fmt.Errorf("bad -key: want 48 hex digits, got %d", len(s))
	}
	for i := range key {
		key[i] = binary.BigEndian.Uint32(raw[4*i:])
	}
	return key, nil
}

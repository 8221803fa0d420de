package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gestaozabele/assets/internal/auth"
)

func main() {
	generate := flag.Bool("generate", false, "gera uma chave nova e imprime chave e hash")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "uso:")
		fmt.Fprintln(os.Stderr, "  hashkey <chave>          hash de uma chave existente")
		fmt.Fprintln(os.Stderr, "  echo <chave> | hashkey   lê a chave da entrada padrão")
		fmt.Fprintln(os.Stderr, "  hashkey -generate        nova chave + hash para INTERNAL_API_KEY_HASH")
	}
	flag.Parse()

	key, err := readKey(*generate, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "chave: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.HashKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash: %v\n", err)
		os.Exit(1)
	}

	if *generate {
		fmt.Printf("X-Internal-Key=%s\n", key)
		fmt.Printf("INTERNAL_API_KEY_HASH=%s\n", hash)
		return
	}
	fmt.Println(hash)
}

func readKey(generate bool, args []string) (string, error) {
	if generate {
		return auth.GenerateKey()
	}
	if len(args) > 0 {
		return args[0], nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("nenhuma chave informada: %w", err)
		}
		return "", fmt.Errorf("nenhuma chave informada")
	}
	return line, nil
}

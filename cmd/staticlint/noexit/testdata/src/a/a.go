package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("start")
	if len(os.Args) > 3 {
		os.Exit(2) // want "прямой вызов os.Exit в функции main запрещен"
	}
	func() {
		os.Exit(1) // want "прямой вызов os.Exit в функции main запрещен"
	}()
	defer os.Exit(0) // want "прямой вызов os.Exit в функции main запрещен"
}

func helper() {
	os.Exit(1)
}

type server struct{}

func (server) main() {
	os.Exit(1)
}

package main

import "os"

func helper() {
	os.Exit(2)
}

func main() {
	helper()
	os.Exit(1) // want "direct call to os.Exit in main function"
}
